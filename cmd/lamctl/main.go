// lamctl is a small operator tool for the Laminar DEX: inspect a book,
// project an order's state, or place and cancel orders from the
// command line.
//
// Usage:
//
//	lamctl [flags] book <base> <quote> <book-owner>
//	lamctl [flags] order <order-id>
//	lamctl [flags] place <base> <quote> <book-owner> <bid|ask> <price> <size>
//	lamctl [flags] cancel <base> <quote> <book-owner> <order-id> <bid|ask>
//	lamctl [flags] register-user
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/laminarhq/laminar-go/params"
	"github.com/laminarhq/laminar-go/pkg/client"
	"github.com/laminarhq/laminar-go/pkg/crypto"
	"github.com/laminarhq/laminar-go/pkg/types"
	"github.com/laminarhq/laminar-go/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("")

	node := flag.String("node", cfg.NodeURL, "ledger node url")
	contract := flag.String("contract", cfg.ContractAddress, "contract address")
	key := flag.String("key", cfg.Profile.PrivateKey, "hex private key")
	configPath := flag.String("config", "", "yaml profile config path")
	profileName := flag.String("profile", "default", "profile name in -config")
	flag.Parse()

	if *configPath != "" {
		profile, err := params.LoadProfile(*configPath, *profileName)
		if err != nil {
			fatal(err)
		}
		*key = profile.PrivateKey
	}
	if *contract == "" || *key == "" {
		fatal(fmt.Errorf("need -contract and -key (or LAMINAR_CONTRACT_ADDRESS / LAMINAR_PRIVATE_KEY)"))
	}

	log, err := util.NewLogger()
	if err != nil {
		fatal(err)
	}
	defer log.Sync()

	ctx := context.Background()
	signer, err := crypto.FromPrivateKeyHex(*key)
	if err != nil {
		fatal(err)
	}
	c, err := client.Connect(ctx, *node, types.MustParseAddress(*contract), signer, client.WithLogger(log))
	if err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "book":
		expectArgs(args, 4)
		book, err := c.OrderBook(ctx, args[1], args[2], types.MustParseAddress(args[3]))
		if err != nil {
			fatal(err)
		}
		printBook(book)
	case "order":
		expectArgs(args, 2)
		id, err := types.ParseId(args[1])
		if err != nil {
			fatal(err)
		}
		order, err := c.Order(ctx, id)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("order %s: %s %s price=%d size=%d remaining=%d fills=%d\n",
			order.Id, order.Side, order.State, order.Price, order.Size,
			order.RemainingSize, len(order.Fills))
	case "place":
		expectArgs(args, 7)
		payload := c.PlaceLimitOrderPayload(args[1], args[2], types.MustParseAddress(args[3]),
			parseSide(args[4]), parseU64(args[5]), parseU64(args[6]),
			types.GoodTillCanceled, false)
		submit(ctx, c, payload)
	case "cancel":
		expectArgs(args, 6)
		id, err := types.ParseId(args[4])
		if err != nil {
			fatal(err)
		}
		payload := c.CancelOrderPayload(args[1], args[2], types.MustParseAddress(args[3]), id, parseSide(args[5]))
		submit(ctx, c, payload)
	case "register-user":
		submit(ctx, c, c.RegisterUserPayload())
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func submit(ctx context.Context, c *client.Client, payload client.EntryFunction) {
	txn, err := c.Submit(ctx, payload)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("accepted %s (version %d, gas %d)\n", txn.Info.Hash, txn.Info.Version, txn.Info.GasUsed)
	for _, e := range txn.Events {
		fmt.Printf("  event: %s\n", e.Kind())
	}
}

func printBook(book *types.OrderBook) {
	fmt.Printf("book %s (min size %s)\n", book.Id, book.Instrument.MinBaseSize())
	fmt.Println("asks:")
	for _, level := range book.AskLevels() {
		fmt.Printf("  %s x %d orders\n", book.Instrument.QuotePrice(level.Price), len(level.Orders))
	}
	fmt.Println("bids:")
	for _, level := range book.BidLevels() {
		fmt.Printf("  %s x %d orders\n", book.Instrument.QuotePrice(level.Price), len(level.Orders))
	}
}

func parseSide(s string) types.Side {
	switch s {
	case "bid":
		return types.Bid
	case "ask":
		return types.Ask
	}
	fatal(fmt.Errorf("side must be bid or ask, got %q", s))
	return 0
}

func parseU64(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fatal(fmt.Errorf("%q is not a valid number", s))
	}
	return v
}

func expectArgs(args []string, n int) {
	if len(args) != n {
		fatal(fmt.Errorf("%s: wrong number of arguments", args[0]))
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "lamctl: %v\n", err)
	os.Exit(1)
}
