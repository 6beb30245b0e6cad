package main

import (
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/nameview/reverse-resolution-backend/chains"
	"github.com/nameview/reverse-resolution-backend/cmd/flags"
	"github.com/nameview/reverse-resolution-backend/interfaces"
	"github.com/nameview/reverse-resolution-backend/reverse"
)

var resolveFlags = []cli.Flag{
	flags.RpcAddrFlag,
	flags.ChainIDFlag,
	flags.ContractFlag,
	flags.GatewayFlag,
	&cli.Uint64Flag{
		Name:  "block",
		Usage: "block number to pin the lookup to, defaults to the latest block",
	},
	&cli.BoolFlag{
		Name:  "strict",
		Usage: "report why an address has no name instead of printing nothing",
	},
	flags.LogJsonFlag,
	flags.LogDebugFlag,
	flags.LogUidFlag,
	flags.LogServiceFlag,
}

func main() {
	app := &cli.App{
		Name:      "resolve",
		Usage:     "Resolve the primary name of an address",
		ArgsUsage: "<address>",
		Flags:     resolveFlags,
		Action: func(cCtx *cli.Context) error {
			addressHex := cCtx.Args().First()
			if !common.IsHexAddress(addressHex) {
				return fmt.Errorf("expected an address argument, got %q", addressHex)
			}

			logger := flags.SetupLogger(cCtx)

			ethClient, err := ethclient.Dial(cCtx.String(flags.RpcAddrFlag.Name))
			if err != nil {
				logger.Error("Failed to dial RPC", "err", err)
				return err
			}

			req := &interfaces.ResolutionRequest{
				Address:     common.HexToAddress(addressHex),
				GatewayURLs: cCtx.StringSlice(flags.GatewayFlag.Name),
				Strict:      cCtx.Bool("strict"),
			}
			if cCtx.IsSet("block") {
				req.BlockNumber = new(big.Int).SetUint64(cCtx.Uint64("block"))
			}
			if contractHex := cCtx.String(flags.ContractFlag.Name); contractHex != "" {
				if !common.IsHexAddress(contractHex) {
					return fmt.Errorf("invalid contract address %q", contractHex)
				}
				contract := common.HexToAddress(contractHex)
				req.ContractAddress = &contract
			}

			resolver := reverse.New(reverse.Config{
				Caller:     ethClient,
				HTTPClient: &http.Client{Timeout: 10 * time.Second},
				Registry:   chains.DefaultRegistry(),
				ChainID:    cCtx.Uint64(flags.ChainIDFlag.Name),
				Log:        logger,
			})

			result, err := resolver.ResolveName(cCtx.Context, req)
			if err != nil {
				var resErr *reverse.ResolutionError
				if errors.As(err, &resErr) {
					return fmt.Errorf("no name: %w", resErr)
				}
				return err
			}
			if result.Name == "" {
				logger.Info("Address has no verified primary name", "address", req.Address)
				return nil
			}

			fmt.Println(result.Name)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
