// Command ytscript fetches YouTube transcripts and runs inference tasks on them.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
