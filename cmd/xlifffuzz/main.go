// Command xlifffuzz generates randomized synthetic XLIFF file pairs with
// injected faults for exercising xliffverify.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/adammathes/xliffverify/pkg/synth"
)

// FaultRecord describes a fault applied to a generated file.
type FaultRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Validator   string `json:"validator"`
}

// PairSpec describes one generated master/translation pair.
type PairSpec struct {
	ID          int           `json:"id"`
	Master      string        `json:"master"`
	Translation string        `json:"translation"`
	Language    string        `json:"language"`
	Units       int           `json:"units"`
	Faults      []FaultRecord `json:"faults"`
}

var languages = []string{"fr", "de", "zh", "ja", "pt-BR"}

var cli struct {
	Count int    `short:"n" default:"100" help:"Number of file pairs to generate."`
	Seed  int64  `short:"s" default:"42" help:"Random seed."`
	Out   string `short:"o" default:"testdata/synthetic" type:"path" help:"Output directory."`
}

// faultCount draws how many faults to inject: 15% valid, 40% one fault,
// 30% two, 15% three.
func faultCount(rng *rand.Rand) int {
	r := rng.Float64()
	switch {
	case r < 0.15:
		return 0
	case r < 0.55:
		return 1
	case r < 0.85:
		return 2
	}
	return 3
}

func generate(id int, rng *rand.Rand) (*PairSpec, *synth.Builder) {
	lang := languages[rng.Intn(len(languages))]
	b := synth.NewBuilder(fmt.Sprintf("synth_%03d", id), lang, 5+rng.Intn(8), rng)
	spec := &PairSpec{
		ID:          id,
		Master:      b.MasterName(),
		Translation: b.TranslationName(),
		Language:    lang,
		Units:       len(b.Units),
	}
	for _, f := range synth.ApplyRandom(b, faultCount(rng), rng) {
		spec.Faults = append(spec.Faults, FaultRecord{Name: f.Name, Description: f.Description, Validator: f.Validator})
	}
	return spec, b
}

func run() error {
	if err := os.MkdirAll(cli.Out, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", cli.Out, err)
	}
	rng := rand.New(rand.NewSource(cli.Seed))

	ok := color.New(color.FgGreen)
	faulty := color.New(color.FgRed)

	var specs []PairSpec
	valid := 0
	for i := 1; i <= cli.Count; i++ {
		spec, b := generate(i, rng)
		for name, data := range map[string][]byte{spec.Master: b.Master(), spec.Translation: b.Translation()} {
			path := filepath.Join(cli.Out, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		specs = append(specs, *spec)

		if len(spec.Faults) == 0 {
			valid++
			fmt.Printf("[%3d] %s %s\n", i, spec.Translation, ok.Sprint("valid (no faults)"))
			continue
		}
		names := make([]string, len(spec.Faults))
		for j, f := range spec.Faults {
			names[j] = f.Name
		}
		fmt.Printf("[%3d] %s %s\n", i, spec.Translation, faulty.Sprint(strings.Join(names, ", ")))
	}

	manifestPath := filepath.Join(cli.Out, "manifest.json")
	manifestData, err := json.MarshalIndent(specs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, manifestData, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	fmt.Printf("\nGenerated %d pairs in %s (%s, %s)\n", cli.Count, cli.Out,
		ok.Sprintf("%d valid", valid), faulty.Sprintf("%d faulty", cli.Count-valid))
	fmt.Printf("Manifest: %s\n", manifestPath)
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("xlifffuzz"),
		kong.Description("Generate synthetic XLIFF 2.0 file pairs with injected faults"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(run())
}
