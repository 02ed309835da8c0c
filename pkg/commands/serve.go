package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/marklet/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	addr := ""

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background daemon",
		Long: `Run the background daemon. It accepts shortcut commands and run requests
over HTTP on the loopback interface:

  POST /v1/commands/{name}
  POST /v1/messages        {"type":"RUN_BOOKMARKLET","id":"..."}
  GET  /v1/bookmarklets?q=`,
		Example: `
marklet serve
marklet serve --addr 127.0.0.1:0
curl -X POST localhost:7391/v1/commands/run-slot-1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			if !cmd.Flags().Changed("addr") {
				addr = viper.GetString("serve.addr")
			}
			s := serve.Serve{
				Service:     e.Service,
				Persistence: e.Persistence,
				Addr:        addr,
				Log:         logger.Named("serve"),
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "marklet listening on http://%s\n", a)
				},
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; defaults to serve.addr from the config.")
	topLevel.AddCommand(cmd)
}
