package main

import (
	"fmt"

	"imgmeta/internal/config"
	serr "imgmeta/internal/errors"
	"imgmeta/internal/gui"
	"imgmeta/internal/log"
	"imgmeta/internal/state"

	"github.com/spf13/cobra"
)

// cli carries what the persistent flags resolved to. Subcommands read the
// loaded configuration from here.
type cli struct {
	cfgFile string
	debug   bool
	cfg     *config.Config
}

// NewRootCmd creates the root command. Without a subcommand it opens the GUI.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:     "imgmeta",
		Short:   "Browse image folders and inspect or rewrite their metadata",
		Long:    logo + "\nimgmeta lists the images of a folder, shows their EXIF and XMP\nmetadata and writes modified copies with an updated XMP packet.",
		Version: version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.config/imgmeta/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(c.guiCmd())
	rootCmd.AddCommand(c.tuiCmd())
	rootCmd.AddCommand(c.listCmd())
	rootCmd.AddCommand(c.inspectCmd())
	rootCmd.AddCommand(c.rewriteCmd())

	return rootCmd
}

// setup loads the configuration and points the logger at stderr so that
// command output on stdout stays machine readable.
func (c *cli) setup(cmd *cobra.Command) error {
	var err error
	if c.cfgFile != "" {
		c.cfg, err = config.LoadConfigFile(c.cfgFile)
	} else {
		c.cfg, err = config.LoadConfig()
	}
	if err != nil {
		if serr.IsInvalidConfig(err) && c.cfgFile != "" {
			return fmt.Errorf("%s: %w", c.cfgFile, err)
		}
		return fmt.Errorf("loading config: %w", err)
	}

	opts := []log.Option{log.WithOutput(cmd.ErrOrStderr())}
	if c.cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if c.cfg.Log.File != "" {
		opts = append(opts, log.WithFile(c.cfg.Log.File))
	}
	log.Configure(opts...)
	log.SetDebug(c.debug || c.cfg.Log.Debug)

	log.LogWithFields(log.F("command", cmd.Name()), log.F("config", c.cfgFile)).Debug("Configuration loaded")
	return nil
}

// container builds the state container shared by the interactive front ends.
func (c *cli) container() (*state.Container, error) {
	opts, err := state.OptionsFromConfig(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return state.New(opts)
}

func (c *cli) runGUI() error {
	sc, err := c.container()
	if err != nil {
		return err
	}
	defer sc.Close()

	app, err := gui.NewFactory(c.cfg, sc).Create()
	if err != nil {
		return err
	}
	app.Run()
	return nil
}

// guiCmd creates the GUI command for the CLI
func (c *cli) guiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical user interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGUI()
		},
	}
}
