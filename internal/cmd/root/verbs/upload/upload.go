package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/output/render"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Upload
)

var (
	uploadUse   = Verb.String()
	uploadShort = i18n.T("root.verbs.upload.uploadShort", "Upload files to the storefront")
	uploadLong  = normalizers.LongDesc(i18n.T("root.verbs.upload.uploadLong",
		`Use upload to send files, such as home page banners, to the storefront.`))

	bannerShort = i18n.T("root.verbs.upload.bannerShort", "Upload a home page banner image")
	bannerLong  = normalizers.LongDesc(i18n.T("root.verbs.upload.bannerLong",
		`Upload an image as a new home page banner. Extra form fields such as the
banner title are given with --set key=value.`))
	bannerExamples = normalizers.Examples(i18n.T("root.verbs.upload.bannerExamples",
		fmt.Sprintf(`
		# Upload a banner with a title
		%[1]s upload banner ./summer.png --set title="Summer sale"
		`, meta.CLIName)))
)

func NewUploadCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:   uploadUse,
		Short: uploadShort,
		Long:  uploadLong,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
	}
	c.AddCommand(newBannerCmd())
	return c, nil
}

func newBannerCmd() *cobra.Command {
	fields := map[string]string{}
	c := &cobra.Command{
		Use:     "banner <file>",
		Short:   bannerShort,
		Long:    bannerLong,
		Example: bannerExamples,
		Aliases: []string{"banners"},
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBanner(cmd.BuildHelper(c, args), fields)
		},
	}
	c.Flags().StringToStringVar(&fields, common.SetFlagName, nil, "Extra form field, as key=value. Repeatable.")
	return c
}

func runBanner(helper cmd.Helper, fields map[string]string) error {
	res, err := helper.GetResource(string(catalog.RoleAdmin), "banners")
	if err != nil {
		return err
	}
	outOpts, err := render.ResolveOptions(helper)
	if err != nil {
		return err
	}
	client, err := helper.GetStorefrontClient()
	if err != nil {
		return err
	}

	path := helper.GetArgs()[0]
	f, err := os.Open(path)
	if err != nil {
		return &cmd.ConfigurationError{Err: fmt.Errorf("failed to open %s: %w", path, err)}
	}
	defer f.Close()

	ctx := log.WithRequestLogContext(helper.GetContext(), log.RequestLogContext{
		CommandPath: helper.GetCmd().CommandPath(),
		CommandVerb: Verb.String(),
		Role:        string(res.Role),
		Resource:    res.Name,
		Action:      "upload",
	})
	rec, err := client.Upload(ctx, api.ResourcePath(string(res.Role), res.Name),
		res.UploadField, filepath.Base(path), f, fields)
	if err != nil {
		return cmd.PrepareStorefrontError(helper, "error uploading banner", err)
	}

	streams := helper.GetStreams()
	fmt.Fprintf(streams.ErrOut, "uploaded banner %s\n", rec.ID())
	return render.Record(streams.Out, rec, outOpts)
}
