package command

import (
	"fmt"
	"os"

	"github.com/frantjc/bvr"
	"github.com/frantjc/bvr/descriptor"
	"github.com/frantjc/bvr/internal/bvrblob"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
)

// NewBVR returns the root command for
// bvr which acts as its CLI entrypoint.
func NewBVR() *cobra.Command {
	var (
		defaults string
		cmd      = &cobra.Command{
			Use: "bvr",
		}
	)

	cmd.PersistentFlags().StringVar(&defaults, "defaults", "", "user defaults file for bvr (default $BVR_DEFAULTS or "+descriptor.DefaultsPath()+")")

	cmd.AddCommand(
		newResolve(),
		newValidate(),
		newVariants(),
		newFingerprint(),
		newVerify(),
		newAssetLinks(),
	)

	return SetCommon(cmd, bvr.SemVer())
}

// load reads the descriptor at name and the user defaults that apply to it.
func load(cmd *cobra.Command, name string) (*bvr.BuildDescriptor, []bvr.ResolveOpt, error) {
	var (
		ctx = cmd.Context()
		log = bvr.LoggerFrom(ctx)
	)

	d, err := descriptor.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	defaultsName := cmd.Flag("defaults").Value.String()
	if defaultsName == "" {
		defaultsName = os.Getenv("BVR_DEFAULTS")
	}

	defaults, err := descriptor.LoadDefaults(defaultsName)
	if err != nil {
		return nil, nil, err
	}

	if defaults != nil {
		log.V(1).Info("applying user defaults", "platform", d.Platform)
	}

	return d, defaults.ResolveOpts(d.Platform), nil
}

func newResolve() *cobra.Command {
	var (
		output  string
		bloburl string
		cmd     = &cobra.Command{
			Use:   "resolve DESCRIPTOR [VARIANT...]",
			Short: "Resolve variants of a build descriptor into build plans",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					ctx = cmd.Context()
					log = bvr.LoggerFrom(ctx)
				)

				d, opts, err := load(cmd, args[0])
				if err != nil {
					return err
				}

				plans, err := bvr.ResolveAll(ctx, d, args[1:], opts...)
				if err != nil {
					return err
				}

				if bloburl == "" {
					return encodePlans(cmd.OutOrStdout(), output, plans)
				}

				log.Info("opening bucket " + bloburl)
				bucket, err := blob.OpenBucket(ctx, bloburl)
				if err != nil {
					return err
				}
				defer bucket.Close()

				for _, plan := range plans {
					key, err := bvrblob.WritePlan(ctx, bucket, plan)
					if err != nil {
						return err
					}

					log.Info("wrote plan", "variant", plan.Variant, "key", key)
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}

				return nil
			},
		}
	)

	cmd.Flags().StringVarP(&output, "output", "o", OutputJSON, fmt.Sprintf("output format, one of %v", outputs))
	cmd.Flags().StringVar(&bloburl, "blob", "", "bucket URL to hand plans off to instead of printing them")

	return cmd
}

func newValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate DESCRIPTOR",
		Short: "Resolve every variant of a build descriptor, reporting all violations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, opts, err := load(cmd, args[0])
			if err != nil {
				return err
			}

			plans, err := bvr.ResolveAll(ctx, d, nil, opts...)
			if err != nil {
				return err
			}

			for _, plan := range plans {
				dig, err := plan.Digest()
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", plan.Variant, dig)
			}

			return nil
		},
	}
}

func newVariants() *cobra.Command {
	return &cobra.Command{
		Use:   "variants DESCRIPTOR",
		Short: "List the variants of a build descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, name := range bvr.Variants(d) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}

			return nil
		},
	}
}
