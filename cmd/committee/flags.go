package main

import "github.com/urfave/cli/v2"

// Flags are package-level *cli.Flag vars so every command can mix and
// match the subset it needs.

var governorFlag = &cli.StringFlag{
	Name:  "governor",
	Usage: "Tag this node listens on for the governor's DkgInit instruction.",
}

var storageFlag = &cli.StringFlag{
	Name:  "storage",
	Value: "memory",
	Usage: "Blob store backend to use: memory, file, or s3.",
}

var storageEndpointFlag = &cli.StringFlag{
	Name:  "storage-endpoint",
	Usage: "Backend-specific storage location: a directory for file, a bucket for s3 (ignored for memory).",
}

var nodeURLFlag = &cli.StringFlag{
	Name:  "node-url",
	Usage: "Address of a remote node's control API. Accepted but not dialed: setting it only logs a warning, and the local in-process demo transport is used.",
}

var timeResolutionFlag = &cli.IntFlag{
	Name:  "time-resolution",
	Value: 1,
	Usage: "Time resolution in seconds. Accepted but not read by any command.",
}

var signatureSleepTimeFlag = &cli.IntFlag{
	Name:  "signature-sleep-time",
	Value: 5,
	Usage: "Seconds a signing session waits to collect partial signatures before finalizing with whatever it has.",
}

var statePathFlag = &cli.StringFlag{
	Name:  "state-path",
	Usage: "Path to this node's persisted state file. Defaults to node-state.json under COMMITTEE_STATE_DIR.",
}

var metricsFlag = &cli.StringFlag{
	Name:  "metrics",
	Usage: "Launch a Prometheus metrics server at the specified (host:)port.",
}

var inputURIFlag = &cli.StringFlag{
	Name:  "input-uri",
	Usage: "InputUri for the request: iota:message:<id>, storage:local:<key>, literal:string:<text>, or a URL.",
}

var storageIDFlag = &cli.StringFlag{
	Name:  "storage-id",
	Usage: "Key to store the fetched data under (storage:local:<key> as the request's storage_uri).",
}

var committeeIndexFlag = &cli.StringFlag{
	Name:     "committee-index",
	Required: true,
	Usage:    "Tag identifying the committee to send this request to (its committee DID).",
}

var nodesFlag = &cli.StringFlag{
	Name:     "nodes",
	Required: true,
	Usage:    "Comma-separated list of member DIDs to form a new committee from.",
}

var governorIndexFlag = &cli.StringFlag{
	Name:  "governor-index",
	Value: "governor",
	Usage: "Tag to publish the DkgInit instruction on.",
}

var messageFlag = &cli.StringFlag{
	Name:     "message",
	Required: true,
	Usage:    "Raw text to publish on the given tag.",
}

var tagFlag = &cli.StringFlag{
	Name:     "tag",
	Required: true,
	Usage:    "Transport tag to publish the message under.",
}

var committeeLogFlag = &cli.StringFlag{
	Name:     "committee-log",
	Required: true,
	Usage:    "JSON-encoded CommitteeLog to verify.",
}

var logFlag = &cli.StringFlag{
	Name:     "log",
	Required: true,
	Usage:    "JSON-encoded NodeSignatureLog to verify.",
}

func toArray(flags ...cli.Flag) []cli.Flag { return flags }
