package cmd

import (
	"fmt"
	"os"

	"github.com/AnyUserName/imgpress/internal/decoder"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/scanner"
	"github.com/spf13/cobra"
)

var infoDecode bool

var infoCmd = &cobra.Command{
	Use:   "info <paths...>",
	Short: "Show detected format, dimensions and size of images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoDecode, "decode", false, "fully decode to verify structure and colour model")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sources, err := scanner.Scan(args)
	if err != nil {
		return err
	}
	dec := decoder.New(decoder.Options{AvifdecPath: cfg.AvifdecPath})

	fmt.Println()
	bad := 0
	for _, s := range sources {
		line, err := describe(dec, s)
		if err != nil {
			bad++
			fmt.Printf("  ✗ %-40s %s: %s\n", truncKey(s.RelPath, 40), imgerr.KindOf(err), err)
			continue
		}
		fmt.Printf("  ✓ %-40s %s\n", truncKey(s.RelPath, 40), line)
	}
	fmt.Println()
	if bad > 0 {
		return fmt.Errorf("%d of %d files could not be read", bad, len(sources))
	}
	return nil
}

func describe(dec *decoder.Decoder, s scanner.Source) (string, error) {
	data, err := os.ReadFile(s.AbsPath)
	if err != nil {
		return "", imgerr.Wrap(imgerr.KindIO, "read", err)
	}
	f, err := format.Detect(data)
	if err != nil {
		return "", err
	}
	pt, err := dec.Probe(f, data)
	if err != nil {
		return "", err
	}
	line := fmt.Sprintf("%-5s %5d×%-5d %9s", f, pt.X, pt.Y, formatBytes(int64(len(data))))
	if !infoDecode {
		return line, nil
	}
	a, err := dec.DecodeAny(data)
	if err != nil {
		return "", err
	}
	alpha := ""
	if a.HasAlpha() {
		alpha = " alpha"
	}
	return fmt.Sprintf("%s  %s %d-bit%s", line, a.Model, a.BitDepth, alpha), nil
}
