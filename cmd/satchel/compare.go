// Compare command reports how two stored items relate.
package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <id> <id>",
	Short: "Compare two items for equality and similarity",
	Long: `Compare decodes two items and reports whether they are equal (same
in every respect), similar (equal apart from stack size) and their hashes.
Similar items stack together.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

// comparison is the result of comparing two stacks.
type comparison struct {
	A       string `json:"a" yaml:"a"`
	B       string `json:"b" yaml:"b"`
	Equal   bool   `json:"equal" yaml:"equal"`
	Similar bool   `json:"similar" yaml:"similar"`
	HashA   string `json:"hash_a" yaml:"hash_a"`
	HashB   string `json:"hash_b" yaml:"hash_b"`
}

func runCompare(cmd *cobra.Command, args []string) (err error) {
	platform, err := loadPlatform()
	if err != nil {
		return err
	}
	codec := newCodec(platform)

	stash, err := attachStash()
	if err != nil {
		return err
	}
	defer detach(stash, &err)

	a, err := loadStack(stash, codec, args[0])
	if err != nil {
		return err
	}
	b, err := loadStack(stash, codec, args[1])
	if err != nil {
		return err
	}

	c := comparison{
		A:       a.String(),
		B:       b.String(),
		Equal:   a.Equal(b),
		Similar: a.IsSimilar(b),
		HashA:   fmt.Sprintf("%016x", a.Hash()),
		HashB:   fmt.Sprintf("%016x", b.Hash()),
	}
	if flagJSON {
		return writeOutput(cmd.OutOrStdout(), c)
	}
	printComparison(cmd.OutOrStdout(), c)
	return nil
}

func printComparison(w io.Writer, c comparison) {
	yes := color.New(color.FgGreen, color.Bold).SprintFunc()
	no := color.New(color.FgRed).SprintFunc()
	verdict := func(ok bool) string {
		if ok {
			return yes("yes")
		}
		return no("no")
	}

	fmt.Fprintf(w, "a:       %s\n", c.A)
	fmt.Fprintf(w, "b:       %s\n", c.B)
	fmt.Fprintf(w, "equal:   %s\n", verdict(c.Equal))
	fmt.Fprintf(w, "similar: %s\n", verdict(c.Similar))
	hash := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(w, "hash:    %s %s\n", hash(c.HashA), hash(c.HashB))
}
