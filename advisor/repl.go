package advisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const prompt = "assist> "

// Run is the interactive loop of a conversation.
//
// prompts are sent first as if typed by the user, then lines are read from r
// until "bye" or the end of input. Answers are printed with print.
func Run(ctx context.Context, c *Conversation, w io.Writer, r io.Reader, print func(string), prompts ...string) error {
	in := bufio.NewReader(r)
	fmt.Fprintln(w, "Ask about your trades. Type 'bye' to exit.")
	for {
		fmt.Fprint(w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(w, input)
		} else {
			var err error
			input, err = in.ReadString('\n')
			if err != nil && (err != io.EOF || strings.TrimSpace(input) == "") {
				if err == io.EOF {
					fmt.Fprintln(w)
					return nil
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
		}

		if input == "bye" {
			return nil
		}
		print(c.Send(ctx, input))
	}
}
