// Package cli implements the blockctl command line tool.
package cli

import (
	"github.com/hupe1980/blockstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
	logger  *blockstore.Logger
}

// NewRootCommand creates the blockctl root command with all subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:   "blockctl",
		Short: "Inspect and edit block device images",
		Long: `blockctl works on block device image files: flat dumps of a
fixed number of equally sized blocks whose allocation bitmap lives in the
first bytes of block 0.

Every command loads the image, applies its change and saves it back.
Images can be pushed to and pulled from a local directory, S3 or MinIO.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			logger, err := cfg.newLogger()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger.WithDevice(cfg.Image)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./blockctl.yaml)")
	pf.StringP("image", "i", "device.img", "device image file")
	pf.Int("block-count", blockstore.DefaultBlockCount, "number of physical blocks")
	pf.Int("block-size", blockstore.DefaultBlockSize, "block size in bytes")
	pf.Bool("strict", false, "reject images shorter than the device")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("remote", "local", "remote provider: local, s3 or minio")
	pf.String("bucket", "", "remote bucket")

	_ = a.v.BindPFlag("image", pf.Lookup("image"))
	_ = a.v.BindPFlag("block_count", pf.Lookup("block-count"))
	_ = a.v.BindPFlag("block_size", pf.Lookup("block-size"))
	_ = a.v.BindPFlag("strict", pf.Lookup("strict"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log_format", pf.Lookup("log-format"))
	_ = a.v.BindPFlag("remote.provider", pf.Lookup("remote"))
	_ = a.v.BindPFlag("remote.bucket", pf.Lookup("bucket"))

	root.AddCommand(
		a.newCreateCommand(),
		a.newStatCommand(),
		a.newAllocCommand(),
		a.newRequestCommand(),
		a.newReleaseCommand(),
		a.newReadCommand(),
		a.newWriteCommand(),
		a.newLayoutCommand(),
		a.newPushCommand(),
		a.newPullCommand(),
		a.newListCommand(),
	)
	return root
}

func (a *app) openDevice() (*blockstore.Device, error) {
	return blockstore.NewFromFile(a.cfg.Image, a.cfg.deviceOptions(a.logger)...)
}

// update loads the image, applies fn and saves the image when fn succeeds.
func (a *app) update(fn func(d *blockstore.Device) error) error {
	d, err := a.openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := fn(d); err != nil {
		return err
	}
	_, err = d.SaveToFile(a.cfg.Image)
	return err
}

// view loads the image and applies fn without saving.
func (a *app) view(fn func(d *blockstore.Device) error) error {
	d, err := a.openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	return fn(d)
}
