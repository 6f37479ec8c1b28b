package cmd

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/Alia5/razerctl/internal/hidio"
	"github.com/Alia5/razerctl/internal/protocol"
)

// Info enumerates the device's HID interfaces and prints their derived
// classification.
type Info struct {
	Device `embed:""`

	Format string `help:"Output format" enum:"text,yaml" default:"text"`
}

type interfaceReport struct {
	Path       string `yaml:"path"`
	Number     int    `yaml:"number"`
	UsagePage  string `yaml:"usagePage"`
	Usage      string `yaml:"usage"`
	MaxInput   int    `yaml:"maxInputReportSize"`
	MaxOutput  int    `yaml:"maxOutputReportSize"`
	MaxFeature int    `yaml:"maxFeatureReportSize"`
	Roles      string `yaml:"roles"`
}

func (c *Info) Run(logger *slog.Logger) error {
	tr, err := hidio.New()
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	ifaces, err := tr.Enumerate(c.VendorID, c.ProductID)
	if err != nil {
		return err
	}
	if len(ifaces) == 0 {
		return fmt.Errorf("no HID interfaces found for %04x:%04x", c.VendorID, c.ProductID)
	}

	classified := protocol.ClassifyAll(ifaces, "")
	reports := make([]interfaceReport, 0, len(classified))
	for _, iface := range classified {
		reports = append(reports, interfaceReport{
			Path:       iface.Path,
			Number:     iface.Number,
			UsagePage:  fmt.Sprintf("0x%04x", iface.UsagePage),
			Usage:      fmt.Sprintf("0x%04x", iface.Usage),
			MaxInput:   iface.MaxInputReportSize,
			MaxOutput:  iface.MaxOutputReportSize,
			MaxFeature: iface.MaxFeatureReportSize,
			Roles:      iface.Roles.String(),
		})
	}

	if c.Format == "yaml" {
		out, err := yaml.Marshal(reports)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	for _, r := range reports {
		fmt.Printf("#%d %s\n", r.Number, r.Path)
		fmt.Printf("    usagePage=%s usage=%s in=%d out=%d feature=%d\n",
			r.UsagePage, r.Usage, r.MaxInput, r.MaxOutput, r.MaxFeature)
		fmt.Printf("    roles: %s\n", r.Roles)
	}
	logger.Debug("classification complete", "interfaces", len(reports))
	return nil
}
