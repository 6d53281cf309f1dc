// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// Images are uploaded with the aws-sdk-go-v2 upload manager and read back with
// ranged GetObject calls:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "images/")
//	n, err := dev.Export(ctx, store, "disk.img")
package s3
