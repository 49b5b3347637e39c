// Package hub implements a client for the Blackmagic Videohub Ethernet
// protocol (TCP port 9990).
//
// The protocol is line-oriented ASCII with no length prefixes or
// terminators: the hub writes a burst of text and goes quiet. Replies are
// therefore framed by silence (see Conn.ReceiveUntilIdle).
//
// # Reading
//
// Fetch sends the four single-byte read commands (preamble, input labels,
// output labels, routing) over one connection and parses the replies:
//
//	client := hub.NewClient("192.168.1.248", hub.DefaultPort)
//	result, err := client.Fetch(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, out := range result.State.SortedOutputs() {
//	    fmt.Println(out, result.State.Routing[out])
//	}
//
// Sections are located with ExtractSection and split into records with
// Tokenize, ParseLabels and ParseRouting. Malformed records are skipped
// under the Lenient policy and reported in ParseStats; Strict turns them
// into errors.
//
// # Applying
//
// Apply sends one "VIDEO OUTPUT ROUTING:" block per output. A failed send
// only fails that output:
//
//	res, err := client.Apply(ctx, preset, func(i, total int, o hub.RouteOutcome) {
//	    fmt.Printf("%d/%d output %d <- input %d\n", i+1, total, o.Output, o.Input)
//	})
//
// # Comparing
//
// Compare is pure and lines up a preset against the hub, output by output.
package hub
