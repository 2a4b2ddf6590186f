package cmd

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/imgpress/internal/decoder"
	"github.com/AnyUserName/imgpress/internal/encoder"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/profile"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List codec capabilities and presets",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	enc := encoder.New(encoder.Options{CwebpPath: cfg.CwebpPath, AvifencPath: cfg.AvifencPath})
	dec := decoder.New(decoder.Options{AvifdecPath: cfg.AvifdecPath})

	yes := func(b bool) string {
		if b {
			return "yes"
		}
		return "-"
	}

	fmt.Println()
	fmt.Printf("  %-6s  %-6s  %-6s  %-8s\n", "format", "decode", "encode", "lossless")
	for _, f := range []format.Format{format.AVIF, format.WebP, format.JPEG, format.PNG, format.BMP, format.TIFF} {
		decodes := f != format.AVIF || dec.AVIFAvailable()
		fmt.Printf("  %-6s  %-6s  %-6s  %-8s\n", f,
			yes(decodes), yes(enc.Supports(f, false)), yes(enc.Supports(f, true)))
	}
	fmt.Println()
	fmt.Printf("  %s\n", enc.String())
	fmt.Println()

	fmt.Println("  Presets:")
	for _, name := range profile.Names() {
		p := profile.Get(name)
		marker := " "
		if name == profile.DefaultName {
			marker = "*"
		}
		fmt.Printf("   %s %-10s %s\n", marker, name, p.Description)
	}
	fmt.Println()

	var missing []string
	caps := enc.Capabilities()
	if !caps.WebP {
		missing = append(missing, "cwebp (apt install webp)")
	}
	if !caps.AVIF {
		missing = append(missing, "avifenc (apt install libavif-bin)")
	}
	if !dec.AVIFAvailable() {
		missing = append(missing, "avifdec (apt install libavif-bin)")
	}
	if len(missing) > 0 {
		fmt.Printf("  Missing tools: %s\n\n", strings.Join(missing, ", "))
	}
	return nil
}
