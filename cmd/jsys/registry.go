package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/meigma/jsystem"
	"github.com/meigma/jsystem/rarc"
	"github.com/meigma/jsystem/registry"
)

// client builds a jsystem client from the registry config.
func (a *app) client() (*jsystem.Client, error) {
	rc := a.cfg.Registry
	opts := []jsystem.Option{
		jsystem.WithLogger(a.logger),
		jsystem.WithCache(a.cache),
		jsystem.WithEncoding(a.enc),
		jsystem.WithPlainHTTP(rc.PlainHTTP),
	}
	if rc.Host != "" {
		opts = append(opts, jsystem.WithStaticCredentials(rc.Host, rc.Username, rc.Password))
	} else {
		opts = append(opts, jsystem.WithDockerConfig())
	}
	opts = append(opts, jsystem.WithRegistryOptions(a.regOpts...))
	return jsystem.NewClient(opts...)
}

func (a *app) pushCommand() *command {
	var (
		compression string
		tags        []string
		annotations []string
	)
	c := &command{
		name:    "push",
		summary: "Pack a directory or archive and push it to a registry",
		usage:   "PATH REF",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("push", pflag.ContinueOnError)
			fs.StringVarP(&compression, "compression", "c", "", "layer compression: none, yaz0 or zstd (default from config)")
			fs.StringSliceVarP(&tags, "tag", "t", nil, "additional tags")
			fs.StringArrayVarP(&annotations, "annotation", "a", nil, "manifest annotation KEY=VALUE (repeatable)")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 2); err != nil {
			return err
		}
		if compression == "" {
			compression = a.cfg.Registry.Compression
		}
		comp, err := registry.ParseCompression(compression)
		if err != nil {
			return err
		}
		ann, err := parseAnnotations(annotations)
		if err != nil {
			return err
		}

		root, err := a.loadTree(args[0])
		if err != nil {
			return err
		}
		cl, err := a.client()
		if err != nil {
			return err
		}
		desc, err := cl.Push(a.ctx, args[1], root,
			registry.PushWithCompression(comp),
			registry.PushWithTags(tags...),
			registry.PushWithAnnotations(ann),
		)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, desc.Digest)
		return nil
	}
	return c
}

// loadTree reads a directory tree, or decodes path as an archive when it
// is a regular file.
func (a *app) loadTree(path string) (*rarc.Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return jsystem.ReadTree(path)
	}
	return a.readArchive(path)
}

func parseAnnotations(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid annotation %q (want KEY=VALUE)", kv)
		}
		out[k] = v
	}
	return out, nil
}

func (a *app) pullCommand() *command {
	var force bool
	c := &command{
		name:    "pull",
		summary: "Pull an archive from a registry into a directory",
		usage:   "REF DIR",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("pull", pflag.ContinueOnError)
			fs.BoolVarP(&force, "force", "f", false, "overwrite existing files")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 2); err != nil {
			return err
		}
		cl, err := a.client()
		if err != nil {
			return err
		}
		res, err := cl.PullDir(a.ctx, args[0], args[1], jsystem.WriteWithOverwrite(force))
		if err != nil {
			return err
		}
		dirs, files := res.Root.Count()
		a.logger.Info("pulled archive", "ref", args[0], "dirs", dirs, "files", files)
		return nil
	}
	return c
}

func (a *app) inspectCommand() *command {
	var long bool
	c := &command{
		name:    "inspect",
		summary: "Show an archive's manifest and index without downloading it",
		usage:   "REF",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			fs.BoolVarP(&long, "long", "l", false, "list every entry with its size and digest")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 1); err != nil {
			return err
		}
		cl, err := a.client()
		if err != nil {
			return err
		}
		res, err := cl.Inspect(a.ctx, args[0])
		if err != nil {
			return err
		}

		key := color.New(color.Bold)
		m, idx := res.Manifest, res.Index
		tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\n", key.Sprint("Digest:"), m.Descriptor().Digest)
		fmt.Fprintf(tw, "%s\t%s\n", key.Sprint("Root:"), idx.RootName())
		fmt.Fprintf(tw, "%s\t%s\n", key.Sprint("Compression:"), m.Compression())
		fmt.Fprintf(tw, "%s\t%d bytes (%d stored)\n", key.Sprint("Archive:"), idx.ArchiveSize(), m.DataDescriptor().Size)
		fmt.Fprintf(tw, "%s\t%d\n", key.Sprint("Entries:"), idx.Len())
		if created := m.Created(); !created.IsZero() {
			fmt.Fprintf(tw, "%s\t%s\n", key.Sprint("Created:"), created.Format(time.RFC3339))
		}
		if long {
			fmt.Fprintln(tw)
			for e := range idx.Entries() {
				if e.IsDir() {
					fmt.Fprintf(tw, "%s/\t\t\n", e.Path())
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Path(), e.Size(), e.Digest())
			}
		}
		return tw.Flush()
	}
	return c
}
