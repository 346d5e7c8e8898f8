package editcmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"litdb/src/internal/hooks"
	"litdb/src/internal/labels"
	"litdb/src/internal/names"
	"litdb/src/internal/relocate"
	"litdb/src/internal/schema"
	"litdb/src/internal/session"
)

// New returns the edit command for single-entry updates, scripted or via the
// configured editor. Setting the label field renames the entry; the store
// rename and the file relocation are treated as one unit.
func New() *cobra.Command {
	var (
		sets          []string
		deletes       []string
		preserveFiles bool
	)
	cmd := &cobra.Command{
		Use:   "edit <label>",
		Short: "Update fields of a single entry (may rename it)",
		Long: `Update the fields of one entry. With --set/--delete flags the change is
scripted; without them the entry opens in the configured editor as YAML.
Changing the label renames the entry and its associated files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			preserve := s.Config.PreserveFiles
			if cmd.Flags().Changed("preserve-files") {
				preserve = preserveFiles
			}
			return run(cmd, s, args[0], sets, deletes, preserve)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value assignment (repeatable)")
	cmd.Flags().StringArrayVar(&deletes, "delete", nil, "field to remove (repeatable)")
	cmd.Flags().BoolVar(&preserveFiles, "preserve-files", false, "do NOT rename associated files on a label change")
	return cmd
}

func run(cmd *cobra.Command, s *session.Session, label string, sets, deletes []string, preserve bool) error {
	entry, ok := s.Store.Get(label)
	if !ok {
		return fmt.Errorf("no entry with the label %q could be found", label)
	}

	s.Hooks.Publish(hooks.PreEdit, &hooks.Payload{Command: "edit", Labels: []string{label}})

	newLabel := label
	if len(sets) == 0 && len(deletes) == 0 {
		edited, err := editInteractive(entry, s.Config.Editor)
		if err != nil {
			return err
		}
		entry.Fields = edited.Fields
		entry.Files = edited.Files
		entry.Notes = edited.Notes
		if edited.Label != label {
			newLabel = labels.Normalize(edited.Label)
			if newLabel == "" {
				return fmt.Errorf("the label field may not be empty")
			}
		}
	}
	for _, pair := range sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("--set must have the form field=value, got %q", pair)
		}
		name = strings.TrimSpace(name)
		if name == "label" {
			newLabel = labels.Normalize(value)
			if newLabel == "" {
				return fmt.Errorf("the label field may not be empty")
			}
			continue
		}
		if name == "author" || name == "editor" {
			if people := names.ParseList(value); len(people) > 0 {
				entry.Set(name, schema.PeopleValue(people...))
				continue
			}
		}
		if n, err := strconv.Atoi(value); err == nil && value != "" {
			entry.Set(name, schema.IntValue(n))
		} else {
			entry.Set(name, schema.StringValue(value))
		}
	}
	for _, name := range deletes {
		if name == "label" {
			return fmt.Errorf("the label field cannot be removed")
		}
		if !entry.Delete(name) {
			return fmt.Errorf("entry %q has no field %q", label, name)
		}
	}

	if err := entry.Validate(); err != nil {
		return err
	}

	if newLabel != label {
		if err := s.Store.Rename(label, newLabel); err != nil {
			return err
		}
		if err := relocate.Relocate(entry, label, newLabel, preserve); err != nil {
			// Relocation failed with everything rolled back; abort the label
			// change so store and filesystem stay consistent.
			if rerr := s.Store.Rename(newLabel, label); rerr != nil {
				return fmt.Errorf("%w (and label restore failed: %v)", err, rerr)
			}
			return err
		}
	}

	s.Hooks.Publish(hooks.PostEdit, &hooks.Payload{Command: "edit", Labels: []string{newLabel}, Entries: []*schema.Entry{entry}})

	if err := s.Flush("edit", "label: "+newLabel); err != nil {
		return err
	}
	if newLabel != label {
		fmt.Fprintf(cmd.OutOrStdout(), "%q was renamed to %q\n", label, newLabel)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%q was successfully edited\n", newLabel)
	return nil
}

// editInteractive round-trips the entry through the configured editor.
func editInteractive(entry *schema.Entry, editor string) (*schema.Entry, error) {
	f, err := os.CreateTemp("", "litdb-edit-*.yaml")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	defer os.Remove(path)

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(entry); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	ed := exec.Command(editor, path)
	ed.Stdin = os.Stdin
	ed.Stdout = os.Stdout
	ed.Stderr = os.Stderr
	if err := ed.Run(); err != nil {
		return nil, fmt.Errorf("editor %q failed: %w", editor, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edited schema.Entry
	if err := yaml.Unmarshal(data, &edited); err != nil {
		return nil, fmt.Errorf("edited entry is malformed: %w", err)
	}
	return &edited, nil
}
