package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// BundleFile is the name of the PDF holding every chart.
const BundleFile = "charts.pdf"

// BundlePDF writes one PDF page per image, in order.
func BundlePDF(images []string, out string) error {
	if len(images) == 0 {
		return errors.New("bundle pdf: no images")
	}
	imp := pdfcpu.DefaultImportConfig()
	if err := api.ImportImagesFile(images, out, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("bundle pdf: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return ctx.PageCount, nil
}
