package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/blockstore"
	"github.com/hupe1980/blockstore/blobstore"
	miniostore "github.com/hupe1980/blockstore/blobstore/minio"
	s3store "github.com/hupe1980/blockstore/blobstore/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
)

// openStore creates the blob store selected by the remote config.
func openStore(ctx context.Context, rc RemoteConfig) (blobstore.Store, error) {
	switch rc.Provider {
	case "local", "":
		return blobstore.NewLocalStore(rc.Root), nil
	case "s3":
		if rc.Bucket == "" {
			return nil, errors.New("s3 remote requires a bucket")
		}

		optFns := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(rc.Region)}
		if rc.AccessKey != "" {
			optFns = append(optFns, awsconfig.WithCredentialsProvider(
				awscreds.NewStaticCredentialsProvider(rc.AccessKey, rc.SecretKey, ""),
			))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}

		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			if rc.Endpoint != "" {
				o.BaseEndpoint = aws.String(rc.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, rc.Bucket, rc.Prefix), nil
	case "minio":
		if rc.Bucket == "" || rc.Endpoint == "" {
			return nil, errors.New("minio remote requires an endpoint and a bucket")
		}

		client, err := minio.New(rc.Endpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(rc.AccessKey, rc.SecretKey, ""),
			Secure: rc.UseSSL,
			Region: rc.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return miniostore.NewStore(client, rc.Bucket, rc.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown remote provider %q", rc.Provider)
	}
}

func (a *app) newPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push NAME",
		Short: "Upload the image to the remote store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, a.cfg.Remote)
			if err != nil {
				return err
			}

			return a.view(func(d *blockstore.Device) error {
				n, err := d.Export(ctx, store, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pushed %s (%d bytes)\n", args[0], n)
				return nil
			})
		},
	}
}

func (a *app) newPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull NAME",
		Short: "Download an image from the remote store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, a.cfg.Remote)
			if err != nil {
				return err
			}

			d, err := blockstore.Import(ctx, store, args[0], a.cfg.deviceOptions(a.logger)...)
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.SaveToFile(a.cfg.Image)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled %s into %s (%d bytes)\n", args[0], a.cfg.Image, n)
			return nil
		},
	}
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PREFIX]",
		Short: "List images in the remote store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, a.cfg.Remote)
			if err != nil {
				return err
			}

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := store.List(ctx, prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
