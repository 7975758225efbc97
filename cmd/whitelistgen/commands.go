package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pixelguard/internal/integrity"
	"pixelguard/pkg/platform/sentinel"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "whitelistgen",
		Short:         "Build and inspect integrity whitelist resources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newHashCmd(), newEncodeCmd(), newDecodeCmd(), newListCmd())
	return root
}

// =============================================================================
// hash
// =============================================================================

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash NAME [TOKEN_HEX]",
		Short: "Print the whitelist hash of a module identity",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token []byte
			if len(args) == 2 {
				var err error
				if token, err = hex.DecodeString(args[1]); err != nil {
					return fmt.Errorf("token must be hex: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), integrity.Hash(args[0], token))
			return nil
		},
	}
}

// =============================================================================
// encode
// =============================================================================

type encodeOptions struct {
	out     string
	merge   string
	binary  []string
	entries []string
}

func newEncodeCmd() *cobra.Command {
	var opts encodeOptions
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Write a whitelist resource",
		Long: `Collects module identities from Go binaries (--binary) and literal
"name:hash[:hash...]" entries (--entry), optionally appending to an existing
resource (--merge), and writes the obfuscated resource to --out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output resource path (required)")
	cmd.Flags().StringVar(&opts.merge, "merge", "", "existing resource to extend")
	cmd.Flags().StringArrayVar(&opts.binary, "binary", nil, "Go binary whose modules are whitelisted (repeatable)")
	cmd.Flags().StringArrayVar(&opts.entries, "entry", nil, `literal "name:hash[:hash...]" entry (repeatable)`)
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runEncode(cmd *cobra.Command, opts encodeOptions) error {
	w := integrity.NewWhitelist()
	if opts.merge != "" {
		existing, err := readWhitelist(opts.merge)
		if err != nil {
			return err
		}
		w = existing
	}

	for _, path := range opts.binary {
		mods, err := integrity.NewBinarySource(path).Modules(cmd.Context())
		if err != nil {
			return fmt.Errorf("read modules of %s: %w", path, err)
		}
		for _, m := range mods {
			w.Add(m.Name, integrity.Hash(m.Name, m.Token))
		}
	}
	for _, line := range opts.entries {
		e, err := integrity.ParseEntry(line)
		if err != nil {
			return err
		}
		w.Add(e.Name, e.Hashes...)
	}
	if w.Len() == 0 {
		return fmt.Errorf("nothing to write, pass --binary or --entry: %w", sentinel.ErrConfigurationMissing)
	}

	var buf bytes.Buffer
	if err := integrity.EncodeWhitelist(&buf, w); err != nil {
		return err
	}
	if err := writeFileAtomic(opts.out, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d modules to %s\n", w.Len(), opts.out)
	return nil
}

// =============================================================================
// decode
// =============================================================================

func newDecodeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Print the entries of a whitelist resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := readWhitelist(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(w.Entries())
			}
			for _, e := range w.Entries() {
				fmt.Fprintln(out, integrity.FormatEntry(e))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

// =============================================================================
// list
// =============================================================================

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list BINARY",
		Short: "Print the module identities and hashes of a Go binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := integrity.NewBinarySource(args[0]).Modules(cmd.Context())
			if err != nil {
				return fmt.Errorf("read modules of %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, m := range mods {
				fmt.Fprintf(out, "%s\t%d\t%s\n", m.Name, integrity.Hash(m.Name, m.Token), m.Path)
			}
			return nil
		},
	}
}

func readWhitelist(path string) (*integrity.Whitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open whitelist: %w", err)
	}
	defer f.Close()
	return integrity.DecodeWhitelist(f)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".whitelist-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
