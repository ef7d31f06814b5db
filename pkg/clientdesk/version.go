// Package clientdesk carries the release version of the console.
package clientdesk

// Version is the release version, printed by "clientdesk version".
const Version = "0.1.0"
