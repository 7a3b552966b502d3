package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frantjc/bvr"
	"github.com/frantjc/bvr/android"
	"github.com/frantjc/bvr/apktool"
	"github.com/frantjc/bvr/internal/bvrregexp"
	"github.com/frantjc/bvr/ios"
	"github.com/frantjc/bvr/keytool"
	"github.com/spf13/cobra"
)

// storePath resolves a signing config's storeFile the way Gradle does:
// relative to the descriptor, with a leading ~ meaning the home directory.
func storePath(descriptorName, storeFile string) (string, error) {
	if rest, ok := strings.CutPrefix(storeFile, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		return filepath.Join(home, rest), nil
	} else if filepath.IsAbs(storeFile) {
		return storeFile, nil
	}

	return filepath.Join(filepath.Dir(descriptorName), storeFile), nil
}

func keystoreFingerprint(ctx context.Context, k keytool.Command, descriptorName string, signingConfig *bvr.SigningConfig) (string, error) {
	if signingConfig.StoreFile == "" {
		return "", fmt.Errorf("signing config %s has no storeFile", signingConfig.Name)
	}

	name, err := storePath(descriptorName, signingConfig.StoreFile)
	if err != nil {
		return "", err
	}

	bvr.LoggerFrom(ctx).V(1).Info("reading keystore", "signingConfig", signingConfig.Name, "storeFile", name)

	return k.KeystoreSHA256CertFingerprints(ctx, name, &keytool.KeystoreOpts{
		StorePassword: signingConfig.StorePassword,
		StoreType:     signingConfig.StoreType,
		Alias:         signingConfig.KeyAlias,
	})
}

func newFingerprint() *cobra.Command {
	var (
		keytoolPath string
		cmd         = &cobra.Command{
			Use:   "fingerprint DESCRIPTOR SIGNING_CONFIG",
			Short: "Print the SHA-256 certificate fingerprint of a signing config's key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				d, _, err := load(cmd, args[0])
				if err != nil {
					return err
				}

				signingConfig, ok := d.LookupSigningConfig(args[1])
				if !ok {
					return &bvr.ConfigError{
						Err:        bvr.ErrUnresolvedReference,
						Field:      "signingConfig",
						Value:      args[1],
						Constraint: "declared signing config",
					}
				}

				fingerprint, err := keystoreFingerprint(ctx, keytool.Command(keytoolPath), args[0], signingConfig)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), fingerprint)
				return err
			},
		}
	)

	cmd.Flags().StringVar(&keytoolPath, "keytool", "keytool", "path to keytool")

	return cmd
}

func newVerify() *cobra.Command {
	var (
		apktoolPath   string
		keytoolPath   string
		framePath     string
		decodeDir     string
		skipSignature bool
		cmd           = &cobra.Command{
			Use:   "verify DESCRIPTOR VARIANT ARTIFACT",
			Short: "Check that an .apk or .ipa was built from a variant's plan",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					ctx      = cmd.Context()
					log      = bvr.LoggerFrom(ctx)
					artifact = args[2]
				)

				if !bvrregexp.IsArtifact(artifact) {
					return fmt.Errorf("unsupported artifact %s, expected .apk or .ipa", artifact)
				}

				d, opts, err := load(cmd, args[0])
				if err != nil {
					return err
				}

				plan, err := bvr.Resolve(d, args[1], opts...)
				if err != nil {
					return err
				}

				switch {
				case bvrregexp.IsAPK(artifact):
					verifyOpts := &android.VerifyOpts{}
					if plan.Signed() && !skipSignature {
						if verifyOpts.SHA256CertFingerprints, err = keystoreFingerprint(ctx, keytool.Command(keytoolPath), args[0], plan.SigningConfig); err != nil {
							return err
						}
					}

					if version, err := apktool.Command(apktoolPath).Version(ctx); err == nil {
						log.V(1).Info("using apktool " + version)
					}

					apkOpts := []android.APKDecoderOpt{android.WithAPKTool(apktoolPath), android.WithKeytool(keytoolPath)}
					if framePath != "" {
						apkOpts = append(apkOpts, android.WithFramePath(framePath))
					}
					if decodeDir != "" {
						apkOpts = append(apkOpts, android.WithDir(decodeDir))
					}

					apk := android.NewAPKDecoder(artifact, apkOpts...)
					defer apk.Close()

					log.Info("verifying " + artifact)
					if err = android.VerifyAPK(ctx, plan, apk, verifyOpts); err != nil {
						return err
					}
				case bvrregexp.IsIPA(artifact):
					ipa := ios.NewIPADecoder(artifact)
					defer ipa.Close()

					log.Info("verifying " + artifact)
					if err = ios.VerifyIPA(ctx, plan, ipa); err != nil {
						return err
					}
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s matches %s\n", artifact, plan.Variant)
				return err
			},
		}
	)

	cmd.Flags().StringVar(&apktoolPath, "apktool", "apktool", "path to apktool")
	cmd.Flags().StringVar(&keytoolPath, "keytool", "keytool", "path to keytool")
	cmd.Flags().StringVar(&framePath, "frame-path", "", "apktool framework directory")
	cmd.Flags().StringVar(&decodeDir, "decode-dir", "", "decode the .apk into this directory and keep it")
	cmd.Flags().BoolVar(&skipSignature, "skip-signature", false, "do not compare the signing certificate")

	return cmd
}

func newAssetLinks() *cobra.Command {
	var (
		keytoolPath  string
		fingerprints []string
		cmd          = &cobra.Command{
			Use:   "assetlinks DESCRIPTOR VARIANT",
			Short: "Print the assetlinks.json or apple-app-site-association document for a variant",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				d, opts, err := load(cmd, args[0])
				if err != nil {
					return err
				}

				plan, err := bvr.Resolve(d, args[1], opts...)
				if err != nil {
					return err
				}

				switch plan.Platform {
				case bvr.PlatformIOS:
					aasa, err := ios.AppleAppSiteAssociationFromPlan(plan)
					if err != nil {
						return err
					}

					return encodeJSON(cmd.OutOrStdout(), aasa)
				default:
					if len(fingerprints) == 0 {
						if !plan.Signed() {
							return fmt.Errorf("variant %s is unsigned, pass --fingerprint", plan.Variant)
						}

						fingerprint, err := keystoreFingerprint(ctx, keytool.Command(keytoolPath), args[0], plan.SigningConfig)
						if err != nil {
							return err
						}

						fingerprints = append(fingerprints, fingerprint)
					}

					assetLinks, err := android.AssetLinksFromPlan(plan, fingerprints...)
					if err != nil {
						return err
					}

					return encodeJSON(cmd.OutOrStdout(), assetLinks)
				}
			},
		}
	)

	cmd.Flags().StringVar(&keytoolPath, "keytool", "keytool", "path to keytool")
	cmd.Flags().StringArrayVar(&fingerprints, "fingerprint", nil, "SHA-256 certificate fingerprint to use instead of reading the signing config's keystore")

	return cmd
}
