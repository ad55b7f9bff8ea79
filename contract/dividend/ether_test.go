package dividend_test

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
	"github.com/meverselabs/stoclient/contract/contracttest"
	"github.com/meverselabs/stoclient/contract/dividend"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EtherCheckpoint", func() {
	var (
		ctx        = context.Background()
		backend    *contracttest.Backend
		cctx       *contract.Context
		module     *contracttest.Stub
		moduleAddr = common.HexToAddress("0x0000000000000000000000000000000000000e0d")
	)

	BeforeEach(func() {
		backend = contracttest.NewBackend()
		auth, _, err := contracttest.NewAuth()
		Expect(err).To(Succeed())
		cctx = contract.NewContext(backend, auth)
		module = deployModule(backend, moduleAddr, abis.EtherDividendCheckpoint, []record{
			{checkpoint: 1, created: 100, maturity: 200, expiry: 300, amount: 10, supply: 50, name: "E1"},
			{checkpoint: 1, created: 110, maturity: 210, expiry: 310, amount: 20, supply: 50, name: "E2"},
		})
		ok := func(args []interface{}) ([]interface{}, error) { return nil, nil }
		module.Handle("createDividendWithCheckpoint", ok).Handle("createDividendWithCheckpointAndExclusions", ok)
	})

	It("sets the native coin as the currency of every dividend", func() {
		cp, err := dividend.NewEtherCheckpoint(moduleAddr, cctx)
		Expect(err).To(Succeed())

		ds, err := cp.Dividends(ctx)
		Expect(err).To(Succeed())
		Expect(ds).To(HaveLen(2))
		for _, d := range ds {
			Expect(*d.Currency).To(Equal("ETH"))
		}

		cctx.NativeSymbol = "MEV"
		ds, err = cp.Dividends(ctx)
		Expect(err).To(Succeed())
		Expect(*ds[1].Currency).To(Equal("MEV"))
		Expect(ds[1].Name).To(Equal("E2"))
	})

	It("pays the amount as the transaction value", func() {
		cp, err := dividend.NewEtherCheckpoint(moduleAddr, cctx)
		Expect(err).To(Succeed())

		maturity := time.Unix(1800000000, 0)
		_, err = cp.CreateDividend(ctx, dividend.NewDividend{
			Maturity:     maturity,
			Expiry:       maturity.Add(time.Hour),
			Amount:       decimal.RequireFromString("1.25"),
			CheckpointID: 4,
			Name:         "E3",
		})
		Expect(err).To(Succeed())

		_, err = cp.CreateDividend(ctx, dividend.NewDividend{
			Maturity: maturity,
			Expiry:   maturity.Add(time.Hour),
			Amount:   decimal.NewFromInt(2),
			Name:     "E4",
			Excluded: []common.Address{},
		})
		Expect(err).To(Succeed())

		sent := backend.Sent()
		Expect(sent).To(HaveLen(2))
		Expect(sent[0].Method).To(Equal("createDividendWithCheckpoint"))
		Expect(sent[0].Value.String()).To(Equal("1250000000000000000"))
		Expect(sent[0].Args).To(HaveLen(4))
		Expect(sent[0].Args[2].(*big.Int).Int64()).To(Equal(int64(4)))
		Expect(sent[1].Method).To(Equal("createDividendWithCheckpointAndExclusions"))
		Expect(sent[1].Value.String()).To(Equal("2000000000000000000"))
	})
})
