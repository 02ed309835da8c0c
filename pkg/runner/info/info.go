// Package info reports where marklet keeps its data and how it is configured.
package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/store"
)

type Info struct {
	Config  store.Config
	Service *app.Service
	// Values are extra configuration entries to report, in order.
	Values [][2]string
	Out    io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	if n.Config == nil || n.Service == nil {
		return errors.New("can not report, no configuration")
	}
	out := printers.Output(n.Out)
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if override := os.Getenv("MARKLET_CONFIG_PATH"); override != "" {
		tbl.AddRow(bold.Sprint("MARKLET_CONFIG_PATH"), override)
	} else {
		tbl.AddRow(bold.Sprint("MARKLET_CONFIG_PATH"), "not set")
	}
	tbl.AddRow(bold.Sprint("path"), n.Config.BasePath())
	tbl.AddRow(bold.Sprint("sync quota"), fmt.Sprintf("%d bytes per item", n.Config.MaxItemBytes()))
	tbl.AddRow(bold.Sprint("metadata"), filepath.Join(n.Config.BasePath(), string(store.Sync)))
	tbl.AddRow(bold.Sprint("code"), filepath.Join(n.Config.BasePath(), string(store.Local)))
	for _, kv := range n.Values {
		tbl.AddRow(bold.Sprint(kv[0]), kv[1])
	}

	all, err := n.Service.Records.ListAll(ctx)
	if err != nil {
		return err
	}
	current, err := n.Service.Settings.Get(ctx)
	if err != nil {
		return err
	}
	bound := 0
	for _, id := range current.SlotBindings {
		if id != "" {
			bound++
		}
	}
	tbl.AddRow(bold.Sprint("bookmarklets"), len(all))
	tbl.AddRow(bold.Sprint("bound slots"), bound)
	tbl.RightAlign(0)

	_, err = fmt.Fprintln(out, tbl)
	return err
}
