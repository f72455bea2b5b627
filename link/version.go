package link

// Version of chatlink
var Version = "v0.1.0-DEV"
