package cmd

import (
	"github.com/spf13/cobra"

	"github.com/exvulsec/codetrace/client"
	"github.com/exvulsec/codetrace/config"
	"github.com/exvulsec/codetrace/log"
	"github.com/exvulsec/codetrace/server"
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "run http server",
	Run: func(cmd *cobra.Command, args []string) {
		config.SetupConfig()
		log.InitLog(config.Conf.ETL.LogPath)
		srv := server.NewHTTPServer(client.RPCClient())
		srv.Run()
	},
}

func init() {
	httpCmd.Flags().StringVarP(&config.CfgPath, "config", "c", "", "set config file path")
	httpCmd.Flags().StringVarP(&config.Env,
		"env",
		"e",
		"dev",
		"server environment type, available: dev, prod")
}
