package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/verdantbio/datakit/pkg/cli"
	"github.com/verdantbio/datakit/pkg/dataio"
	"github.com/verdantbio/datakit/pkg/storage"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <source> <dest>",
	Short: "Download a remote dataset to a local file",
	Long: `Fetch downloads an http(s) or s3:// source and writes it to a local
file. Remote .tar.gz archives are unpacked to their first member.

s3:// sources use the default AWS credential chain.`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]
	ctx := cmd.Context()

	rv := &dataio.Resolver{
		Logger:     logger(),
		OpenBucket: openBucket,
	}
	in, err := rv.OpenRead(ctx, dataio.Ref(src), dataio.ReadBinary)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	fmt.Printf("%s (%s)\n", dst, cli.FormatBytes(n))
	return nil
}

// openBucket builds an object opener over an S3 bucket using the default
// AWS credential chain.
func openBucket(ctx context.Context, bucket string) (dataio.ObjectOpener, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return storage.NewBucket(s3.NewFromConfig(cfg), bucket, ""), nil
}
