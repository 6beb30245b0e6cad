package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/nameview/reverse-resolution-backend/chains"
	"github.com/nameview/reverse-resolution-backend/cmd/flags"
	"github.com/nameview/reverse-resolution-backend/httpserver"
	"github.com/nameview/reverse-resolution-backend/reverse"
)

var serverFlags = append([]cli.Flag{
	flags.RpcAddrFlag,
	flags.ChainIDFlag,
	flags.ContractFlag,
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "name-server",
		Usage: "Serve reverse-resolution API",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			rpcAddress := cCtx.String(flags.RpcAddrFlag.Name)
			listenAddr := cCtx.String("listen-addr")
			chainID := cCtx.Uint64(flags.ChainIDFlag.Name)

			logger := flags.SetupLogger(cCtx)

			logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
			ethClient, err := ethclient.Dial(rpcAddress)
			if err != nil {
				logger.Error("Failed to dial RPC", "err", err)
				return err
			}

			registry := chains.DefaultRegistry()
			if contractHex := cCtx.String(flags.ContractFlag.Name); contractHex != "" {
				registry = chains.NewRegistry(chains.Chain{
					ID:       chainID,
					Name:     "custom",
					Contract: common.HexToAddress(contractHex),
				})
			}

			resolver := reverse.New(reverse.Config{
				Caller:     ethClient,
				HTTPClient: &http.Client{Timeout: 10 * time.Second},
				Registry:   registry,
				ChainID:    chainID,
				Log:        logger,
			})

			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)
			server := httpserver.New(cfg, httpserver.NewHandler(resolver, logger))

			logger.Info("Starting server")
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
