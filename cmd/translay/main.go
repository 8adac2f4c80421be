// Command translay translates HTML files in place using a per-scope
// translation memory and an OpenAI-compatible backend.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dangehub/translay"
	"github.com/dangehub/translay/cloud"
	"github.com/dangehub/translay/dictionary"
	"github.com/dangehub/translay/provider"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "translay",
		Short: "In-place HTML translation with translation memory",
		Long: `Translay translates the text blocks of an HTML document in place,
resolving each block through a per-scope persistent dictionary before
falling back to an OpenAI-compatible chat-completion endpoint.

Use "translay translate --help" for translation options.`,
		Version:       translay.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.translay.yaml)")
	flags.String("api-url", "", "chat-completion endpoint URL")
	flags.String("api-key", "", "API key (default TRANSLAY_API_KEY env)")
	flags.String("model", "gpt-4o-mini", "model name")
	flags.String("from", "auto", "source language")
	flags.String("to", "zh", "target language")
	flags.String("dict-dir", "translation", "dictionary directory")
	flags.String("scope", translay.DefaultScope, "active dictionary scope")
	flags.Int("max-len", 500, "maximum block text length")
	for _, name := range []string{"api-url", "api-key", "model", "from", "to", "dict-dir", "scope", "max-len"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	cobra.OnInitialize(initConfig)

	root.AddCommand(translateCmd(), scopesCmd(), dictCmd(), cloudCmd())
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".translay")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("translay")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func loadSettings() translay.Settings {
	s := translay.DefaultSettings()
	if v := viper.GetString("api-url"); v != "" {
		s.APIURL = v
	}
	s.APIKey = viper.GetString("api-key")
	s.Model = viper.GetString("model")
	s.FromLang = viper.GetString("from")
	s.ToLang = viper.GetString("to")
	s.UIScope = viper.GetString("scope")
	if v := viper.GetInt("max-len"); v > 0 {
		s.MaxTextLength = v
	}
	if v := viper.GetStringSlice("skip-selectors"); len(v) > 0 {
		s.SkipSelectors = v
	}
	if v := viper.GetString("cloud-registry-url"); v != "" {
		s.CloudRegistryURL = v
	}
	return s
}

func openStore() *dictionary.Store {
	store := dictionary.NewStore(afero.NewOsFs(), viper.GetString("dict-dir"))
	store.EnsureReady()
	return store
}

func translateCmd() *cobra.Command {
	var output string
	var dictOnly bool

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate an HTML document (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := openInput(args)
			if err != nil {
				return err
			}
			defer input.Close()

			settings := loadSettings()
			store := openStore()
			defer store.Flush()

			opts := []translay.SessionOption{
				translay.WithDictionary(store, settings.UIScope),
			}
			if !dictOnly && settings.APIKey != "" {
				opts = append(opts, translay.WithProvider(provider.FromSettings(settings)))
			}
			doc, err := translay.ParseDocument(input, settings, opts...)
			if err != nil {
				return err
			}

			err = doc.Translate(cmd.Context(), translay.TranslateOptions{
				DictionaryOnly: dictOnly,
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			rendered, err := doc.HTML()
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, []byte(rendered), 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&dictOnly, "dictionary-only", false, "resolve from the dictionary only, no network calls")
	return cmd
}

func scopesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scopes",
		Short: "Manage dictionary scopes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List persisted scopes",
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, scope := range openStore().ListScopes() {
					fmt.Fprintln(cmd.OutOrStdout(), scope)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <old> <new>",
			Short: "Rename a scope",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				store := openStore()
				store.RenameScope(args[0], args[1])
				store.Flush()
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a scope",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if args[0] == translay.DefaultScope {
					return fmt.Errorf("the default scope cannot be deleted")
				}
				openStore().RemoveScope(args[0])
				return nil
			},
		},
	)
	return cmd
}

func dictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Export and import dictionary files",
	}
	var output string
	export := &cobra.Command{
		Use:   "export <scope>",
		Short: "Export a scope as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := openStore().Export(args[0])
			data, err := json.MarshalIndent(file, "", "  ")
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	importCmd := &cobra.Command{
		Use:   "import <scope> <file>",
		Short: "Merge a dictionary file into a scope",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var file dictionary.File
			if err := json.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("invalid dictionary file: %w", err)
			}
			store := openStore()
			store.EnsureScope(args[0])
			store.Import(args[0], &file)
			store.Flush()
			return nil
		},
	}
	cmd.AddCommand(export, importCmd)
	return cmd
}

func cloudCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Browse and download cloud dictionaries",
	}
	var registryURL string
	cmd.PersistentFlags().StringVar(&registryURL, "registry", "", "registry URL (default from config)")

	registry := func() string {
		if registryURL != "" {
			return registryURL
		}
		return loadSettings().CloudRegistryURL
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List dictionaries from the registry",
			RunE: func(cmd *cobra.Command, _ []string) error {
				metas, err := cloud.NewClient().FetchRegistry(cmd.Context(), registry())
				if err != nil {
					return err
				}
				for _, m := range metas {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-8s %s\n", m.Scope, m.Lang, m.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "pull <scope>",
			Short: "Download a dictionary and merge it into its scope",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				client := cloud.NewClient()
				metas, err := client.FetchRegistry(ctx, registry())
				if err != nil {
					return err
				}
				for _, m := range metas {
					if m.Scope != args[0] && m.ID != args[0] {
						continue
					}
					file, err := client.FetchDict(ctx, m)
					if err != nil {
						return err
					}
					store := openStore()
					store.EnsureScope(file.Scope)
					store.Import(file.Scope, file)
					store.Flush()
					fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries into %s\n", len(file.Entries), file.Scope)
					return nil
				}
				return fmt.Errorf("no dictionary named %q in the registry", args[0])
			},
		},
	)
	return cmd
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return f, nil
}
