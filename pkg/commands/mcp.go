package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport string
		addr      string
		path      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server",
		Long: `Serve the saved bookmarklets, the shortcut settings and run/command tools to
MCP clients, over streamable HTTP on loopback or over stdio.`,
		Example: `
marklet mcp
marklet mcp --addr 127.0.0.1:0 --path /marklet
marklet mcp --transport stdio
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			r := mcp.Runner{
				Service:   e.Service,
				Transport: mcp.Transport(transport),
				Addr:      addr,
				Path:      path,
				Log:       logger.Named("mcp"),
				Stdin:     cmd.InOrStdin(),
				Stdout:    cmd.OutOrStdout(),
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s%s\n", a, path)
				},
			}
			return output.HandleError(r.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), `Transport: "http" or "stdio".`)
	cmd.Flags().StringVar(&addr, "addr", mcp.DefaultAddr, "Listen address for the HTTP transport; port 0 picks one.")
	cmd.Flags().StringVar(&path, "path", mcp.DefaultPath, "Endpoint path for the HTTP transport.")
	_ = cmd.RegisterFlagCompletionFunc("transport", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(mcp.TransportHTTP), string(mcp.TransportStdio)}, cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}
