// brushtool converts brush geometry dumps into meshes and colliders.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brushmesh/internal/cache"
	"github.com/Faultbox/brushmesh/internal/config"
	"github.com/Faultbox/brushmesh/internal/logger"
	"github.com/Faultbox/brushmesh/pkg/convert"
	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "convert", "c":
		err = cmdConvert(args)
	case "info":
		err = cmdInfo(args)
	case "cull":
		err = cmdCull(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`brushtool - brush geometry to mesh converter

Usage:
  brushtool <command> [options] <dump.yaml>

Commands:
  convert <dump.yaml>   Convert brushes and write Wavefront OBJ
  info <dump.yaml>      Show entity, brush and texture counts
  cull <dump.yaml>      List the faces hidden by culling

Options (convert, cull):
  -config <file>        Config file (default ./brushmesh.yaml)
  -debug                Enable debug logging
  -scale <f>            Override import scaling factor
  -collider-mode <m>    box_only | box_and_convex | convex_only | merge_all_concave
  -no-cull              Disable hidden face culling
  -o <file>             Output path for convert (default stdout)
  -no-cache             Bypass the conversion cache

Examples:
  brushtool convert -o level.obj level.yaml
  brushtool convert -scale 0.0625 -collider-mode box_only level.yaml
  brushtool cull level.yaml`)
}

// setup parses the shared flags, loads the config and starts logging.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: brushtool %s [options] <dump.yaml>", fs.Name())
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	output := fs.String("o", "-", "Output OBJ path (- for stdout)")
	noCache := fs.Bool("no-cache", false, "Bypass the conversion cache")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	opts, err := cfg.ConvertOptions()
	if err != nil {
		return err
	}
	entities, raw, err := readDump(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store *cache.Store
	var key string
	if cfg.Cache.Enabled && !*noCache {
		store, err = cache.Open(cfg.CachePath(), logger.Log)
		if err != nil {
			return err
		}
		defer store.Close()
		settings := struct {
			Import    config.ImportConfig     `yaml:"import"`
			Materials []config.MaterialConfig `yaml:"materials"`
			Entities  config.EntitiesConfig   `yaml:"entities"`
		}{cfg.Import, cfg.Materials, cfg.Entities}
		if key, err = cache.Key(raw, settings); err != nil {
			return err
		}
	}

	res, err := lookup(ctx, store, key)
	if err != nil {
		res, err = convert.New(opts, logger.Log).Convert(ctx, entities)
		if err != nil {
			return err
		}
		if store != nil {
			if err := store.Put(ctx, key, res); err != nil {
				logger.Warn("failed to cache result", zap.Error(err))
			}
		}
	}

	var meshes []*mesh.Mesh
	for _, er := range res.Entities {
		meshes = append(meshes, er.Meshes...)
	}

	var w io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := writeOBJ(w, meshes); err != nil {
		return fmt.Errorf("writing OBJ: %w", err)
	}

	printSummary(os.Stderr, res)
	return nil
}

// lookup returns a cached result, or an error if there is none.
func lookup(ctx context.Context, store *cache.Store, key string) (*convert.Result, error) {
	if store == nil {
		return nil, cache.ErrCacheMiss
	}
	res, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("cache lookup failed", zap.Error(err))
		}
		return nil, err
	}
	logger.Info("using cached conversion", zap.String("key", key[:12]))
	return res, nil
}

func printSummary(w io.Writer, res *convert.Result) {
	st := res.Stats
	fmt.Fprintf(w, "Entities:  %d\n", st.Entities)
	fmt.Fprintf(w, "Faces:     %d (%d culled, %d degenerate)\n", st.Faces, st.FacesCulled, st.FacesDegenerate)
	fmt.Fprintf(w, "Meshes:    %d (%d vertices, %d triangles)\n", st.Meshes, st.Vertices, st.Triangles)
	fmt.Fprintf(w, "Colliders: %d\n", st.Colliders)
	for _, er := range res.Entities {
		for _, c := range er.Colliders {
			size := c.Box.Size()
			fmt.Fprintf(w, "  %-32s %-8s trigger=%-5v size=(%g %g %g)\n",
				c.Name, c.Shape, c.IsTrigger, size.X, size.Y, size.Z)
		}
	}
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: brushtool info <dump.yaml>")
	}

	entities, _, err := readDump(fs.Arg(0))
	if err != nil {
		return err
	}

	textures := make(map[string]int)
	brushes, faces := 0, 0
	fmt.Printf("Dump: %s\n\n", fs.Arg(0))
	for i, e := range entities {
		fmt.Printf("  %4d  %-24s brushes=%-4d faces=%d\n", i, e.ClassName, len(e.Brushes), e.FaceCount())
		brushes += len(e.Brushes)
		faces += e.FaceCount()
		for b := range e.Brushes {
			for _, f := range e.Brushes[b].Faces {
				textures[f.Texture]++
			}
		}
	}
	fmt.Println()
	fmt.Printf("Entities: %d\n", len(entities))
	fmt.Printf("Brushes:  %d\n", brushes)
	fmt.Printf("Faces:    %d\n", faces)
	fmt.Println()
	fmt.Println("Faces by texture:")

	type texStat struct {
		name  string
		count int
	}
	var stats []texStat
	for name, count := range textures {
		stats = append(stats, texStat{name, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].name < stats[j].name
	})
	for _, s := range stats {
		fmt.Printf("  %-24s %d\n", s.name, s.count)
	}
	return nil
}

func cmdCull(args []string) error {
	fs := flag.NewFlagSet("cull", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	opts, err := cfg.ConvertOptions()
	if err != nil {
		return err
	}
	entities, _, err := readDump(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	hidden, err := cullReport(ctx, entities, opts)
	if err != nil {
		return err
	}
	for _, h := range hidden {
		fmt.Println(h)
	}
	fmt.Fprintf(os.Stderr, "\n(%d faces hidden)\n", len(hidden))
	return nil
}

// cullReport runs the conversion pipeline up to its discard set and
// describes each hidden face. Snapping and the cull switch apply exactly as
// they do for convert.
func cullReport(ctx context.Context, entities []*entity.Entity, opts convert.Options) ([]string, error) {
	res, err := convert.New(opts, logger.Log).Convert(ctx, entities)
	if err != nil {
		return nil, err
	}
	hidden := make(map[int]bool, len(res.Culled))
	for _, id := range res.Culled {
		hidden[id] = true
	}

	// Face ids follow the solid entities in input order.
	var groups [][]geom.Brush
	var owners []int
	for i, e := range entities {
		if opts.Classes.Classify(e) == entity.Solid {
			groups = append(groups, e.Brushes)
			owners = append(owners, i)
		}
	}
	index := geom.NewIndex(groups...)

	var out []string
	for g, owner := range owners {
		e := entities[owner]
		face := make(map[int]int)
		for _, ref := range index.Group(g) {
			n := face[ref.Brush]
			face[ref.Brush] = n + 1
			if !hidden[ref.ID] {
				continue
			}
			c := ref.Face.Centroid()
			out = append(out, fmt.Sprintf("entity %d (%s) brush %d face %d %s at (%g %g %g)",
				owner, e.ClassName, ref.Brush, n, strings.TrimSpace(ref.Face.Texture), c.X, c.Y, c.Z))
		}
	}
	return out, nil
}
