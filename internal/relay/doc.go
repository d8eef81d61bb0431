// Package relay implements the gateway's command and broadcast flows on top
// of the broker's channel publish, together with the channel/event name
// vocabulary and the two capability profiles (operator and mod client).
package relay
