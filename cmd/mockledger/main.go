// mockledger runs the in-process ledger double as a standalone HTTP
// server for local development against lamctl or a frontend.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/laminarhq/laminar-go/pkg/crypto"
	"github.com/laminarhq/laminar-go/pkg/ledgertest"
	"github.com/laminarhq/laminar-go/pkg/util"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	chainID := flag.Uint("chain-id", ledgertest.DefaultChainID, "chain id to report")
	flag.Parse()

	log, err := util.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mockledger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ledger := ledgertest.New(
		ledgertest.WithLogger(log),
		ledgertest.WithChainID(uint8(*chainID)),
	)

	// Seed a funded dev account so a fresh checkout can submit right
	// away. The key is printed, not stored: this is a throwaway chain.
	signer, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal("generate dev key", zap.Error(err))
	}
	ledger.RegisterAccount(signer.Address(), 0)
	fmt.Printf("dev account: %s\n", signer.Address().Hex())
	fmt.Printf("dev key:     %s\n", signer.PrivateKeyHex())

	log.Info("mock ledger listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, ledger.Handler()); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}
