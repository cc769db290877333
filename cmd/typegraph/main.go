package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"typegraph/internal/attr"
	"typegraph/internal/config"
	"typegraph/internal/graph"
	"typegraph/internal/source"
	"typegraph/internal/storage"
	"typegraph/internal/syntax"
)

var (
	rootCmd = &cobra.Command{
		Use:   "typegraph",
		Short: "Symbol-graph introspection over Go packages",
	}
	configPath  string
	backendName string
	verbose     bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a typegraph.yml config file")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "source", "Symbol backend: source (type-checked) or syntax (parse tree only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(runsCmd)
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadDir loads one directory bucket through the selected backend and returns
// a registry plus the handles of its declared types.
func loadDir(cfg *config.Config, dir string, files []string) (*graph.Registry, []graph.Handle, error) {
	importPath := cfg.Project.Package
	if importPath == "" {
		importPath = filepath.Base(cfg.Project.Root)
	}
	if dir != "." {
		importPath = importPath + "/" + filepath.ToSlash(dir)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(cfg.Project.Root, f)
	}

	switch backendName {
	case "source":
		pkg, err := source.Load(importPath, paths)
		if err != nil {
			return nil, nil, err
		}
		return graph.New(pkg.Backend()), pkg.TypeHandles(), nil
	case "syntax":
		pkg, err := syntax.Load(importPath, paths)
		if err != nil {
			return nil, nil, err
		}
		return graph.New(pkg.Backend()), pkg.TypeHandles(), nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want source or syntax)", backendName)
	}
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <simple-name>",
	Short: "Dump the derived model of one type as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		files, err := cfg.ScanFiles()
		if err != nil {
			return fmt.Errorf("scan %s: %w", cfg.Project.Root, err)
		}

		name := args[0]
		for dir, bucket := range config.GroupByDir(files) {
			reg, handles, err := loadDir(cfg, dir, bucket)
			if err != nil {
				slog.Debug("skipping directory", "dir", dir, "err", err)
				continue
			}
			objects, err := reg.InternAll(cmd.Context(), handles)
			if err != nil {
				return err
			}
			for _, o := range objects {
				if o.SimpleName() != name && o.FullName() != name {
					continue
				}
				out, err := json.MarshalIndent(viewOf(o), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
		}
		return fmt.Errorf("type %q not found under %s", name, cfg.Project.Root)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot every scanned package's graph to SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		files, err := cfg.ScanFiles()
		if err != nil {
			return fmt.Errorf("scan %s: %w", cfg.Project.Root, err)
		}

		store, err := storage.NewStore(cfg.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer store.Close()

		exported := 0
		for dir, bucket := range config.GroupByDir(files) {
			reg, handles, err := loadDir(cfg, dir, bucket)
			if err != nil {
				slog.Warn("skipping directory", "dir", dir, "err", err)
				continue
			}
			roots, err := reg.InternAll(cmd.Context(), handles)
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				continue
			}

			snap, err := storage.Build(cmd.Context(), reg.Backend().Namespace(handles[0]), backendName, roots)
			if err != nil {
				return err
			}
			if err := store.SaveSnapshot(cmd.Context(), snap); err != nil {
				return fmt.Errorf("save snapshot for %s: %w", dir, err)
			}
			slog.Info("snapshot saved",
				"run", snap.RunID, "package", snap.Package, "nodes", len(snap.Nodes))
			exported++
		}
		if exported == 0 {
			return fmt.Errorf("no packages exported under %s", cfg.Project.Root)
		}
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored snapshot runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-40s %-8s %5d nodes  %s\n",
				r.ID, r.Package, r.Backend, r.NodeCount, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

type memberView struct {
	FullName   string       `json:"fullName"`
	Kind       string       `json:"kind"`
	Type       string       `json:"type,omitempty"`
	Nullable   string       `json:"nullable"`
	Public     bool         `json:"public"`
	Attributes []attr.Value `json:"attributes,omitempty"`
}

type nodeView struct {
	FullName         string       `json:"fullName"`
	Kind             string       `json:"kind"`
	SimpleName       string       `json:"simpleName"`
	LocalName        string       `json:"localName"`
	Namespace        string       `json:"namespace,omitempty"`
	GenericsKind     string       `json:"genericsKind"`
	GenericArguments []string     `json:"genericArguments,omitempty"`
	Public           bool         `json:"public"`
	System           bool         `json:"system"`
	Primitive        bool         `json:"primitive"`
	Base             string       `json:"base,omitempty"`
	Interfaces       []string     `json:"interfaces,omitempty"`
	EnumUnderlying   string       `json:"enumUnderlying,omitempty"`
	Attributes       []attr.Value `json:"attributes,omitempty"`
	Members          []memberView `json:"members,omitempty"`
	Position         string       `json:"position,omitempty"`
}

func viewOf(o *graph.Object) nodeView {
	v := nodeView{
		FullName:     o.FullName(),
		Kind:         o.Kind().String(),
		SimpleName:   o.SimpleName(),
		LocalName:    o.LocalName(),
		Namespace:    o.Namespace(),
		GenericsKind: o.GenericsKind().String(),
		Public:       o.IsPublic(),
		System:       o.IsSystem(),
		Primitive:    o.IsPrimitive(),
		Interfaces:   o.Interfaces(),
		Attributes:   o.Attributes(),
	}
	if base := o.Base(); base != nil {
		v.Base = base.FullName()
	}
	if under := o.EnumUnderlying(); under != nil {
		v.EnumUnderlying = under.FullName()
	}
	for _, a := range o.GenericArguments() {
		v.GenericArguments = append(v.GenericArguments, a.FullName())
	}
	if pos := o.Position(); pos.IsKnown() {
		v.Position = pos.String()
	}
	for _, m := range o.Members() {
		mv := memberView{
			FullName:   m.FullName(),
			Kind:       m.Kind().String(),
			Nullable:   m.Nullable().Annotation.String(),
			Public:     m.IsPublic(),
			Attributes: m.Attributes(),
		}
		if t := m.TypeObject(); t != m {
			mv.Type = t.FullName()
		}
		v.Members = append(v.Members, mv)
	}
	return v
}
