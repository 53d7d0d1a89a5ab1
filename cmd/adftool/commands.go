package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/diskimage/adf"
	"github.com/jetsetilly/amichip/diskimage/dms"
	"github.com/jetsetilly/amichip/diskimage/mfm"
	"github.com/jetsetilly/amichip/version"
	"github.com/spf13/cobra"
)

var errExtended = errors.New("adftool: extended images have no filesystem")

// readImage returns the flat image of a disk file. DMS archives are unpacked
func readImage(path string) ([]byte, diskimage.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	f, err := diskimage.Fingerprint(data)
	if err != nil {
		return nil, "", err
	}

	switch f {
	case diskimage.FormatDMS:
		data, err = dms.Unpack(data)
		if err != nil {
			return nil, f, err
		}
	case diskimage.FormatExtended:
		return nil, f, errExtended
	}

	return data, f, nil
}

func openVolume(path string) (*adf.Volume, diskimage.Format, error) {
	img, f, err := readImage(path)
	if err != nil {
		return nil, f, err
	}
	v, err := adf.Open(img)
	if err != nil {
		return nil, f, err
	}
	return v, f, nil
}

// volumeInfo is the summary printed by the info command
type volumeInfo struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Name       string `json:"name"`
	Filesystem string `json:"filesystem"`
	Bootable   bool   `json:"bootable"`
	Files      int    `json:"files"`
	Dirs       int    `json:"dirs"`
	FreeBlocks int    `json:"free_blocks"`
	DMS        string `json:"dms,omitempty"`
}

func info(w io.Writer, path string, asJSON bool) error {
	v, f, err := openVolume(path)
	if err != nil {
		return err
	}

	inf := volumeInfo{
		Path:       path,
		Format:     string(f),
		Name:       v.Name(),
		Filesystem: "OFS",
		Bootable:   v.Bootable(),
		FreeBlocks: v.FreeBlocks(),
	}
	if v.FFS() {
		inf.Filesystem = "FFS"
	}

	if f == diskimage.FormatDMS {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		d, err := dms.ReadInfo(data)
		if err != nil {
			return err
		}
		inf.DMS = d.String()
	}

	err = v.Walk(func(_ string, e adf.Entry) error {
		if e.Dir {
			inf.Dirs++
		} else {
			inf.Files++
		}
		return nil
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(inf)
	}

	fmt.Fprintf(w, "%s (%s)\n", inf.Name, inf.Format)
	fmt.Fprintf(w, "filesystem: %s\n", inf.Filesystem)
	fmt.Fprintf(w, "bootable:   %v\n", inf.Bootable)
	fmt.Fprintf(w, "files:      %d in %d directories\n", inf.Files, inf.Dirs)
	fmt.Fprintf(w, "free:       %d blocks\n", inf.FreeBlocks)
	if inf.DMS != "" {
		fmt.Fprintf(w, "dms:        %s\n", inf.DMS)
	}
	return nil
}

func list(w io.Writer, path string, dir string, recursive bool) error {
	v, _, err := openVolume(path)
	if err != nil {
		return err
	}

	if recursive {
		return v.Walk(func(p string, e adf.Entry) error {
			if e.Dir {
				fmt.Fprintf(w, "%-40s  (dir)\n", p)
			} else {
				fmt.Fprintf(w, "%-40s %7d\n", p, e.Size)
			}
			return nil
		})
	}

	entries, err := v.List(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.String())
	}
	return nil
}

func cat(w io.Writer, path string, file string) error {
	v, _, err := openVolume(path)
	if err != nil {
		return err
	}
	d, err := v.ReadFile(file)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

// extract copies every file in the volume to the destination directory
func extract(w io.Writer, path string, dest string) error {
	v, _, err := openVolume(path)
	if err != nil {
		return err
	}

	return v.Walk(func(p string, e adf.Entry) error {
		out := filepath.Join(dest, filepath.FromSlash(p))
		if rel, err := filepath.Rel(dest, out); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("adftool: %s is outside of %s", p, dest)
		}
		if e.Dir {
			return os.MkdirAll(out, 0o755)
		}
		d, err := v.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, d, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(w, p)
		return nil
	})
}

func mkexe(w io.Writer, exe string, out string, name string) error {
	d, err := os.ReadFile(exe)
	if err != nil {
		return err
	}
	if name == "" {
		name = filepath.Base(exe)
	}
	img, err := adf.MakeExeDisk(name, d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: bootable disk running %s\n", out, name)
	return nil
}

func undms(w io.Writer, in string, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	inf, err := dms.ReadInfo(data)
	if err != nil {
		return err
	}
	img, err := dms.Unpack(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", out, inf)
	return nil
}

// track decodes one track of the disk as the drive would see it
func track(w io.Writer, path string, cyl int, head int, dump bool) error {
	d, err := diskimage.LoadFile(path)
	if err != nil {
		return err
	}
	if head < 0 || head > 1 {
		return fmt.Errorf("head is not valid: %d", head)
	}

	m, err := d.ReadMFMTrack(cyl, head)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "cylinder %d head %d: %d bytes of MFM\n", cyl, head, len(m))

	data, err := mfm.DecodeTrack(cyl*2+head, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d sectors decoded\n", mfm.SectorsPerTrack)

	if dump {
		fmt.Fprint(w, hex.Dump(data))
	}
	return nil
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "adftool",
		Short:         "inspect and create Amiga disk images",
		Version:       version.Title(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var asJSON bool
	infoCmd := &cobra.Command{
		Use:   "info IMAGE",
		Short: "summarise the filesystem of a disk image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return info(cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	infoCmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")

	var recursive bool
	lsCmd := &cobra.Command{
		Use:   "ls IMAGE [DIR]",
		Short: "list a directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 1 {
				dir = args[1]
			}
			return list(cmd.OutOrStdout(), args[0], dir, recursive)
		},
	}
	lsCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "list every file in the volume")

	catCmd := &cobra.Command{
		Use:   "cat IMAGE FILE",
		Short: "write the contents of a file to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cat(cmd.OutOrStdout(), args[0], args[1])
		},
	}

	extractCmd := &cobra.Command{
		Use:   "extract IMAGE DIR",
		Short: "copy every file in the volume to a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return extract(cmd.OutOrStdout(), args[0], args[1])
		},
	}

	var name string
	mkexeCmd := &cobra.Command{
		Use:   "mkexe EXECUTABLE IMAGE",
		Short: "create a bootable disk that runs an executable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mkexe(cmd.OutOrStdout(), args[0], args[1], name)
		},
	}
	mkexeCmd.Flags().StringVar(&name, "name", "", "name of the executable on the disk")

	undmsCmd := &cobra.Command{
		Use:   "undms ARCHIVE IMAGE",
		Short: "unpack a DMS archive to an ADF image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return undms(cmd.OutOrStdout(), args[0], args[1])
		},
	}

	var dump bool
	trackCmd := &cobra.Command{
		Use:   "track IMAGE CYLINDER HEAD",
		Short: "decode the MFM of a single track",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cyl, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("cylinder is not valid: %s", args[1])
			}
			head, err := strconv.Atoi(strings.TrimPrefix(args[2], "h"))
			if err != nil {
				return fmt.Errorf("head is not valid: %s", args[2])
			}
			return track(cmd.OutOrStdout(), args[0], cyl, head, dump)
		},
	}
	trackCmd.Flags().BoolVar(&dump, "dump", false, "hex dump the decoded sectors")

	root.AddCommand(infoCmd, lsCmd, catCmd, extractCmd, mkexeCmd, undmsCmd, trackCmd)
	return root
}
