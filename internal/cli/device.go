package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/blockstore"
	"github.com/spf13/cobra"
)

func parseBlockIDs(args []string) ([]blockstore.BlockID, error) {
	ids := make([]blockstore.BlockID, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid block id %q: %w", arg, err)
		}
		ids = append(ids, blockstore.BlockID(v))
	}
	return ids, nil
}

func (a *app) newCreateCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty device image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(a.cfg.Image); err == nil {
					return fmt.Errorf("image %s already exists (use --force to overwrite)", a.cfg.Image)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			d, err := blockstore.New(a.cfg.deviceOptions(a.logger)...)
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.SaveToFile(a.cfg.Image)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d bytes, %d blocks)\n", a.cfg.Image, n, d.TotalBlocks())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing image")
	return cmd
}

func (a *app) newStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Show device usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view(func(d *blockstore.Device) error {
				s := d.Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "image:       %s\n", a.cfg.Image)
				fmt.Fprintf(out, "image size:  %d\n", s.ImageSize)
				fmt.Fprintf(out, "block size:  %d\n", s.BlockSize)
				fmt.Fprintf(out, "blocks:      %d\n", s.TotalBlocks)
				fmt.Fprintf(out, "used:        %d\n", s.UsedBlocks)
				fmt.Fprintf(out, "free:        %d\n", s.FreeBlocks)
				return nil
			})
		},
	}
}

func (a *app) newAllocCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "alloc",
		Short: "Allocate the lowest free blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ids []blockstore.BlockID
			err := a.update(func(d *blockstore.Device) error {
				for i := 0; i < count; i++ {
					id, err := d.Allocate()
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
				return nil
			})
			if err != nil {
				return err
			}

			// Ids are reported only once the image holding them is saved.
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of blocks to allocate")
	return cmd
}

func (a *app) newRequestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "request ID...",
		Short: "Claim specific blocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ids, err := parseBlockIDs(args)
			if err != nil {
				return err
			}
			return a.update(func(d *blockstore.Device) error {
				layout := roaring.New()
				for _, id := range ids {
					layout.Add(uint32(id))
				}
				return d.Restore(layout)
			})
		},
	}
}

func (a *app) newReleaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release ID...",
		Short: "Free blocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ids, err := parseBlockIDs(args)
			if err != nil {
				return err
			}
			return a.update(func(d *blockstore.Device) error {
				for _, id := range ids {
					d.Release(id)
				}
				return nil
			})
		},
	}
}

func (a *app) newReadCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "read ID",
		Short: "Read one block",
		Long:  "Read one block and write it to --out, or hex dump it to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseBlockIDs(args)
			if err != nil {
				return err
			}
			return a.view(func(d *blockstore.Device) error {
				buf := make([]byte, d.BlockSize())
				if _, err := d.Read(ids[0], buf); err != nil {
					return err
				}
				if out != "" {
					return os.WriteFile(out, buf, 0o644)
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), hex.Dump(buf))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the raw block to this file")
	return cmd
}

func (a *app) newWriteCommand() *cobra.Command {
	var (
		in   string
		fill string
	)

	cmd := &cobra.Command{
		Use:   "write ID",
		Short: "Write one block",
		Long: `Write one block from --in or fill it with the byte --fill.

Input shorter than a block is padded with zeros. Writing block 0
overwrites the allocation bitmap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if (in == "") == (fill == "") {
				return errors.New("exactly one of --in or --fill is required")
			}
			ids, err := parseBlockIDs(args)
			if err != nil {
				return err
			}

			return a.update(func(d *blockstore.Device) error {
				buf, err := blockPayload(d.BlockSize(), in, fill)
				if err != nil {
					return err
				}
				_, err = d.Write(ids[0], buf)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "file holding the block payload")
	cmd.Flags().StringVar(&fill, "fill", "", "byte value to fill the block with (e.g. 0xAB)")
	return cmd
}

func blockPayload(size int, in, fill string) ([]byte, error) {
	buf := make([]byte, size)
	if fill != "" {
		v, err := strconv.ParseUint(fill, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid fill byte %q: %w", fill, err)
		}
		for i := range buf {
			buf[i] = byte(v)
		}
		return buf, nil
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	if len(data) > size {
		return nil, fmt.Errorf("%s holds %d bytes, block size is %d", in, len(data), size)
	}
	copy(buf, data)
	return buf, nil
}

func (a *app) newLayoutCommand() *cobra.Command {
	var (
		export  string
		restore string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show, export or restore the set of allocated blocks",
		Long: `Show the allocated block ids, export them as a serialized roaring
bitmap with --export, or claim the ids of such a file with --restore.

A restore is all-or-nothing: if any id is out of range or already
allocated the image is left unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case export != "" && restore != "":
				return errors.New("--export and --restore are mutually exclusive")
			case restore != "":
				layout, err := readLayout(restore)
				if err != nil {
					return err
				}
				return a.update(func(d *blockstore.Device) error {
					return d.Restore(layout)
				})
			}

			return a.view(func(d *blockstore.Device) error {
				layout := d.Layout()
				if export != "" {
					return writeLayout(export, layout)
				}

				ids := layout.ToArray()
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = strconv.FormatUint(uint64(id), 10)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d allocated: %s\n", len(ids), strings.Join(parts, " "))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "write the layout to this file")
	cmd.Flags().StringVar(&restore, "restore", "", "claim the ids stored in this file")
	return cmd
}

func writeLayout(path string, layout *roaring.Bitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := layout.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readLayout(path string) (*roaring.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	layout := roaring.New()
	if _, err := layout.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	return layout, nil
}
