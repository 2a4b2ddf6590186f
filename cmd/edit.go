package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AnyUserName/imgpress/internal/transform"
	"github.com/spf13/cobra"
)

var (
	editFlags      batchFlags
	editCrop       string
	editResize     string
	editRotate     float64
	editFlipH      bool
	editFlipV      bool
	editBrightness float64
	editContrast   float64
	editFilters    []string
)

var editCmd = &cobra.Command{
	Use:   "edit <paths...>",
	Short: "Crop, resize, rotate and filter images",
	Long: `Applies pixel transforms and re-encodes. Transforms always run in the
order crop, resize, rotate, flip, brightness/contrast, filters.

  --crop WxH+X+Y      crop rectangle in source pixels
  --resize WxH        resize; use 0 for one side to keep the aspect ratio
  --rotate DEG        clockwise; non-multiples of 90 pad with transparency
  --filter NAME       grayscale, sepia, invert, blur, sharpen (repeatable)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEdit,
}

func init() {
	editFlags.register(editCmd)
	fl := editCmd.Flags()
	fl.StringVar(&editCrop, "crop", "", "crop WxH+X+Y")
	fl.StringVar(&editResize, "resize", "", "resize WxH")
	fl.Float64Var(&editRotate, "rotate", 0, "rotate clockwise by degrees")
	fl.BoolVar(&editFlipH, "flip-h", false, "flip horizontally")
	fl.BoolVar(&editFlipV, "flip-v", false, "flip vertically")
	fl.Float64Var(&editBrightness, "brightness", 0, "brightness -100..100")
	fl.Float64Var(&editContrast, "contrast", 0, "contrast -100..100")
	fl.StringSliceVar(&editFilters, "filter", nil, "filters to apply in order")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	start := time.Now()
	opts, err := editOptions()
	if err != nil {
		return err
	}
	cfg, err := editFlags.resolve(cmd)
	if err != nil {
		return err
	}
	cfg.Settings.Transform = opts
	if err := cfg.Validate(); err != nil {
		return err
	}

	rep, err := runBatch(cfg, args, editFlags.noProgress)
	if err != nil {
		return err
	}
	printBatchReport(rep, time.Since(start))
	return batchError(rep)
}

func editOptions() (transform.Options, error) {
	o := transform.Options{
		Rotate:     editRotate,
		FlipH:      editFlipH,
		FlipV:      editFlipV,
		Brightness: editBrightness,
		Contrast:   editContrast,
	}
	if editCrop != "" {
		c, err := parseCrop(editCrop)
		if err != nil {
			return o, err
		}
		o.Crop = &c
	}
	if editResize != "" {
		w, h, err := parseSize(editResize)
		if err != nil {
			return o, fmt.Errorf("--resize: %w", err)
		}
		o.Width, o.Height = w, h
	}
	for _, name := range editFilters {
		f, ok := transform.ParseFilter(name)
		if !ok {
			return o, fmt.Errorf("--filter: unknown filter %q", name)
		}
		o.Filters = append(o.Filters, f)
	}
	return o, o.Validate()
}

// parseCrop reads WxH+X+Y; the offset is optional.
func parseCrop(s string) (transform.Crop, error) {
	var c transform.Crop
	size, offset, hasOffset := strings.Cut(s, "+")
	w, h, err := parseSize(size)
	if err != nil {
		return c, fmt.Errorf("--crop: %w", err)
	}
	c.Width, c.Height = w, h
	if hasOffset {
		xs, ys, ok := strings.Cut(offset, "+")
		if !ok {
			return c, fmt.Errorf("--crop: want WxH+X+Y, got %q", s)
		}
		if c.X, err = strconv.Atoi(xs); err != nil {
			return c, fmt.Errorf("--crop x: %w", err)
		}
		if c.Y, err = strconv.Atoi(ys); err != nil {
			return c, fmt.Errorf("--crop y: %w", err)
		}
	}
	return c, nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("want WxH, got %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("width: %w", err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("height: %w", err)
	}
	return w, h, nil
}
