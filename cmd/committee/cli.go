package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := CLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "committee: %v\n", err)
		os.Exit(1)
	}
}

// CLI assembles the committee node's command-line application: the six
// orchestrator-level subcommands a committee deployment needs: running a
// node, bootstrapping a committee, sending requests, and verifying the
// artifacts a committee publishes.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "committee"
	app.Usage = "threshold-signing committee node"
	app.Writer = os.Stdout
	app.Commands = []*cli.Command{
		{
			Name:  "node",
			Usage: "Run a node: load or create its identity, run the DKG and committee-DID phases if needed, then serve requests.",
			Flags: toArray(governorFlag, storageFlag, storageEndpointFlag, nodeURLFlag,
				timeResolutionFlag, signatureSleepTimeFlag, statePathFlag, metricsFlag),
			Action: nodeCmd,
		},
		{
			Name:  "request",
			Usage: "Publish a request to a committee.",
			Flags: toArray(inputURIFlag, storageIDFlag, committeeIndexFlag, nodeURLFlag),
			Action: requestCmd,
		},
		{
			Name:  "new-committee",
			Usage: "Instruct a set of nodes to run the DKG protocol and form a committee.",
			Flags: toArray(nodesFlag, governorIndexFlag, nodeURLFlag),
			Action: newCommitteeCmd,
		},
		{
			Name:   "send",
			Usage:  "Publish a raw message on a transport tag.",
			Flags:  toArray(messageFlag, tagFlag, nodeURLFlag),
			Action: sendCmd,
		},
		{
			Name:   "verify",
			Usage:  "Verify a committee-signed CommitteeLog.",
			Flags:  toArray(committeeLogFlag, nodeURLFlag),
			Action: verifyCmd,
		},
		{
			Name:   "verify-log",
			Usage:  "Verify a node's individually-signed NodeSignatureLog.",
			Flags:  toArray(logFlag, nodeURLFlag),
			Action: verifyLogCmd,
		},
	}
	return app
}
