// Package prompt implements the interactive decision provider used when a
// new entry collides with an existing label.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"litdb/src/internal/disambig"
	"litdb/src/internal/schema"
)

const help = `A conflict between an existing and a newly added entry occurred. Your options:
  keep          keep the existing entry and discard the new one (default)
  replace       replace the existing entry with the new one
  update        update the existing entry with the new data
  disambiguate  add a label suffix to the new entry
  cancel        cancel the addition of the new entry`

// EntryDecider prompts on Out and reads replies from In.
type EntryDecider struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// Decide renders the colliding pair and asks for an action. An empty reply
// defaults to keep; "help" reprints the option list.
func (d *EntryDecider) Decide(ctx disambig.Context) (disambig.Action, error) {
	if d.reader == nil {
		d.reader = bufio.NewReader(d.In)
	}
	fmt.Fprintf(d.Out, "The label %q already exists:\n\n", ctx.Proposed)
	fmt.Fprintf(d.Out, "--- existing ---\n%s", dump(ctx.Existing))
	fmt.Fprintf(d.Out, "--- new ---\n%s\n", dump(ctx.Incoming))
	for {
		fmt.Fprint(d.Out, "How would you like to handle this conflict? [keep/replace/update/disambiguate/cancel/help] (keep) ")
		line, err := d.reader.ReadString('\n')
		if err != nil && line == "" {
			return disambig.Cancel, fmt.Errorf("reading reply: %w", err)
		}
		reply := strings.ToLower(strings.TrimSpace(line))
		if reply == "" {
			return disambig.Keep, nil
		}
		if reply == "help" {
			fmt.Fprintln(d.Out, help)
			continue
		}
		action, err := disambig.ParseAction(reply)
		if err != nil {
			fmt.Fprintf(d.Out, "invalid reply %q, try again or type help\n", reply)
			continue
		}
		return action, nil
	}
}

func dump(e *schema.Entry) string {
	if e == nil {
		return ""
	}
	b, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Sprintf("(unrenderable entry: %v)\n", err)
	}
	return string(b)
}
