package dividend_test

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/meverselabs/stoclient/common/amount"
	"github.com/meverselabs/stoclient/common/util"
	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
	"github.com/meverselabs/stoclient/contract/contracttest"
	"github.com/meverselabs/stoclient/contract/dividend"
	"github.com/meverselabs/stoclient/contract/token"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ERC20Checkpoint", func() {
	var (
		ctx        = context.Background()
		backend    *contracttest.Backend
		auth       *bind.TransactOpts
		cctx       *contract.Context
		module     *contracttest.Stub
		moduleAddr = common.HexToAddress("0x0000000000000000000000000000000000000d01")
		polyAddr   = common.HexToAddress("0x0000000000000000000000000000000000000a01")
		daiAddr    = common.HexToAddress("0x0000000000000000000000000000000000000a02")
		issuer     = common.HexToAddress("0x0000000000000000000000000000000000000e01")
		records    []record
	)

	deposit := func(index int64, tokenAddr common.Address) {
		r := records[0]
		if index < int64(len(records)) {
			r = records[index]
		}
		backend.MustEmit(module, dividend.EventERC20DividendDeposited,
			issuer, big.NewInt(r.checkpoint), big.NewInt(r.created), big.NewInt(r.maturity), big.NewInt(r.expiry),
			tokenAddr, big.NewInt(r.amount), big.NewInt(r.supply), big.NewInt(index), bytes32(r.name))
	}

	BeforeEach(func() {
		backend = contracttest.NewBackend()
		var err error
		auth, _, err = contracttest.NewAuth()
		Expect(err).To(Succeed())
		cctx = contract.NewContext(backend, auth)

		records = []record{
			{checkpoint: 1, created: 1546300800, maturity: 1546387200, expiry: 1577836800, amount: 1000, claimed: 10, supply: 5000, name: "Q1"},
			{checkpoint: 2, created: 1554076800, maturity: 1554163200, expiry: 1585699200, amount: 2000, supply: 6000, withheld: 7, name: "Q2"},
			{checkpoint: 3, created: 1561939200, maturity: 1562025600, expiry: 1593561600, amount: 3000, supply: 7000, reclaimed: true, name: "Q3"},
		}
		module = deployModule(backend, moduleAddr, abis.ERC20DividendCheckpoint, records)
		backend.Deploy(polyAddr, abis.ERC20).Returns("symbol", "POLY")
		backend.Deploy(daiAddr, abis.ERC20).Returns("symbol", "DAI")
	})

	Describe("Dividends", func() {
		It("decodes the records in index order", func() {
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			ds, err := cp.Dividends(ctx)
			Expect(err).To(Succeed())
			Expect(ds).To(HaveLen(3))
			for i, d := range ds {
				r := records[i]
				Expect(d.Index).To(Equal(i))
				Expect(d.CheckpointID.Int64()).To(Equal(r.checkpoint))
				Expect(d.Created.Unix()).To(Equal(r.created))
				Expect(d.Maturity.Unix()).To(Equal(r.maturity))
				Expect(d.Expiry.Unix()).To(Equal(r.expiry))
				Expect(d.Amount.Int64()).To(Equal(r.amount))
				Expect(d.ClaimedAmount.Int64()).To(Equal(r.claimed))
				Expect(d.TotalSupply.Int64()).To(Equal(r.supply))
				Expect(d.TotalWithheld.Int64()).To(Equal(r.withheld))
				Expect(d.Reclaimed).To(Equal(r.reclaimed))
				Expect(d.Name).To(Equal(r.name))
				Expect(d.Currency).To(BeNil())
			}
		})

		It("resolves the currency of the deposit event with the same index", func() {
			deposit(2, daiAddr)
			deposit(0, polyAddr)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			ds, err := cp.Dividends(ctx)
			Expect(err).To(Succeed())
			Expect(ds).To(HaveLen(3))
			Expect(ds[0].Currency).NotTo(BeNil())
			Expect(*ds[0].Currency).To(Equal("POLY"))
			Expect(ds[1].Currency).To(BeNil())
			Expect(ds[1].CurrencyOr("-")).To(Equal("-"))
			Expect(*ds[2].Currency).To(Equal("DAI"))
			Expect(ds[0].Token).To(Equal(polyAddr))
			Expect(ds[1].Token).To(Equal(common.Address{}))
			Expect(ds[2].Token).To(Equal(daiAddr))
			for i, d := range ds {
				Expect(d.Index).To(Equal(i))
			}
		})

		It("uses the first event of an index and ignores unknown indexes", func() {
			deposit(1, daiAddr)
			deposit(1, polyAddr)
			deposit(7, polyAddr)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			ds, err := cp.Dividends(ctx)
			Expect(err).To(Succeed())
			Expect(ds).To(HaveLen(3))
			Expect(ds[0].Currency).To(BeNil())
			Expect(*ds[1].Currency).To(Equal("DAI"))
			Expect(ds[2].Currency).To(BeNil())
		})

		It("reads one symbol per resolved dividend without a cache", func() {
			deposit(0, polyAddr)
			deposit(1, polyAddr)
			deposit(2, polyAddr)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())
			_, err = cp.Dividends(ctx)
			Expect(err).To(Succeed())
			Expect(backend.Calls(polyAddr, "symbol")).To(Equal(3))
		})

		It("shares a symbol cache across calls", func() {
			deposit(0, polyAddr)
			deposit(1, polyAddr)
			deposit(2, daiAddr)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx, dividend.WithSymbolCache(token.NewSymbolCache(8)))
			Expect(err).To(Succeed())
			for i := 0; i < 2; i++ {
				ds, err := cp.Dividends(ctx)
				Expect(err).To(Succeed())
				Expect(*ds[1].Currency).To(Equal("POLY"))
			}
			Expect(backend.Calls(polyAddr, "symbol")).To(BeNumerically("<=", 2))
			Expect(backend.Calls(daiAddr, "symbol")).To(Equal(1))
		})

		It("fails when a funding token cannot be read", func() {
			ghost := common.HexToAddress("0x0000000000000000000000000000000000000bad")
			deposit(1, ghost)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())
			_, err = cp.Dividends(ctx)
			Expect(errors.Is(err, contract.ErrInvalidContract)).To(BeTrue())
		})

		It("returns no dividends for an empty module", func() {
			emptyAddr := common.HexToAddress("0x0000000000000000000000000000000000000d02")
			deployModule(backend, emptyAddr, abis.ERC20DividendCheckpoint, nil)

			cp, err := dividend.NewERC20Checkpoint(emptyAddr, cctx)
			Expect(err).To(Succeed())
			ds, err := cp.Dividends(ctx)
			Expect(err).To(Succeed())
			Expect(ds).To(BeEmpty())
		})

		It("rejects arrays of different lengths", func() {
			module.Handle("getDividendsData", func(args []interface{}) ([]interface{}, error) {
				one := []*big.Int{big.NewInt(1)}
				return []interface{}{one, one, one, one, []*big.Int{}, [][32]byte{bytes32("Q1")}}, nil
			})
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())
			_, err = cp.Dividends(ctx)
			Expect(errors.Is(err, dividend.ErrInconsistentData)).To(BeTrue())
		})
	})

	Describe("DepositEvents", func() {
		It("decodes the deposit events", func() {
			deposit(0, polyAddr)
			deposit(2, daiAddr)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())
			events, err := cp.DepositEvents(ctx, contract.FullRange)
			Expect(err).To(Succeed())
			Expect(events).To(HaveLen(2))
			Expect(events[0].Depositor).To(Equal(issuer))
			Expect(events[0].Token).To(Equal(polyAddr))
			Expect(events[0].DividendIndex.Int64()).To(Equal(int64(0)))
			Expect(util.Bytes32ToString(events[0].Name)).To(Equal("Q1"))
			Expect(events[1].Token).To(Equal(daiAddr))
			Expect(events[1].DividendIndex.Int64()).To(Equal(int64(2)))
			Expect(events[1].Amount.Int64()).To(Equal(int64(3000)))
			Expect(events[1].Raw.Address).To(Equal(moduleAddr))
		})
	})

	Describe("CreateDividend", func() {
		var (
			maturity = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
			expiry   = time.Date(2027, time.November, 1, 0, 0, 0, 0, time.UTC)
		)

		BeforeEach(func() {
			ok := func(args []interface{}) ([]interface{}, error) { return nil, nil }
			module.Handle("createDividendWithCheckpoint", ok)
			module.Handle("createDividendWithCheckpointAndExclusions", ok)
		})

		It("calls the plain entry point without an exclusion list", func() {
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			tx, err := cp.CreateDividend(ctx, dividend.NewDividend{
				Maturity:     maturity,
				Expiry:       expiry,
				Token:        polyAddr,
				Amount:       decimal.RequireFromString("100.5"),
				CheckpointID: 2,
				Name:         "Q1",
			})
			Expect(err).To(Succeed())
			Expect(tx).NotTo(BeNil())

			sent := backend.Sent()
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].Method).To(Equal("createDividendWithCheckpoint"))
			args := sent[0].Args
			Expect(args).To(HaveLen(6))
			Expect(args[0].(*big.Int).Int64()).To(Equal(maturity.Unix()))
			Expect(args[1].(*big.Int).Int64()).To(Equal(expiry.Unix()))
			Expect(args[2]).To(Equal(polyAddr))
			Expect(args[3].(*big.Int).String()).To(Equal("100500000000000000000"))
			Expect(args[4].(*big.Int).Int64()).To(Equal(int64(2)))
			Expect(args[5]).To(Equal(bytes32("Q1")))
		})

		It("calls the exclusions entry point with an empty but present list", func() {
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			_, err = cp.CreateDividend(ctx, dividend.NewDividend{
				Maturity:     maturity,
				Expiry:       expiry,
				Token:        polyAddr,
				Amount:       decimal.RequireFromString("100.5"),
				CheckpointID: 2,
				Name:         "Q1",
				Excluded:     []common.Address{},
			})
			Expect(err).To(Succeed())

			sent := backend.Sent()
			Expect(sent).To(HaveLen(1))
			Expect(sent[0].Method).To(Equal("createDividendWithCheckpointAndExclusions"))
			Expect(sent[0].Args).To(HaveLen(7))
			Expect(sent[0].Args[5]).To(BeEmpty())
			Expect(sent[0].Args[6]).To(Equal(bytes32("Q1")))
		})

		It("passes the exclusion list as is", func() {
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			excluded := []common.Address{issuer, issuer, polyAddr}
			_, err = cp.CreateDividend(ctx, dividend.NewDividend{
				Maturity: maturity,
				Expiry:   expiry,
				Token:    daiAddr,
				Amount:   decimal.NewFromInt(5),
				Name:     "Q2",
				Excluded: excluded,
			})
			Expect(err).To(Succeed())
			Expect(backend.Sent()[0].Args[5]).To(Equal(excluded))
		})

		It("encodes the exact epoch seconds of the dates", func() {
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			kst := time.FixedZone("KST", 9*60*60)
			for i, m := range []time.Time{
				time.Date(2025, time.January, 1, 9, 30, 59, 999999999, kst),
				time.Unix(1700000000, 0),
				time.Date(2040, time.February, 29, 23, 59, 59, 0, time.UTC),
			} {
				e := m.Add(90 * 24 * time.Hour)
				_, err = cp.CreateDividend(ctx, dividend.NewDividend{Maturity: m, Expiry: e, Token: polyAddr, Amount: decimal.NewFromInt(1), Name: "D"})
				Expect(err).To(Succeed())
				args := backend.Sent()[i].Args
				Expect(args[0].(*big.Int).Int64()).To(Equal(m.Unix()))
				Expect(args[1].(*big.Int).Int64()).To(Equal(e.Unix()))
			}
		})

		It("rejects values that cannot be encoded before sending", func() {
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			_, err = cp.CreateDividend(ctx, dividend.NewDividend{Maturity: maturity, Expiry: expiry, Token: polyAddr, Amount: decimal.NewFromInt(1), Name: "a dividend name longer than 32 bytes"})
			Expect(errors.Is(err, util.ErrNameTooLong)).To(BeTrue())

			_, err = cp.CreateDividend(ctx, dividend.NewDividend{Maturity: maturity, Expiry: expiry, Token: polyAddr, Amount: decimal.RequireFromString("0.0000000000000000001"), Name: "Q1"})
			Expect(errors.Is(err, amount.ErrInvalidAmountFormat)).To(BeTrue())

			before := time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)
			_, err = cp.CreateDividend(ctx, dividend.NewDividend{Maturity: before, Expiry: expiry, Token: polyAddr, Amount: decimal.NewFromInt(1), Name: "Q1"})
			Expect(errors.Is(err, contract.ErrInvalidArgument)).To(BeTrue())
			_, err = cp.CreateDividend(ctx, dividend.NewDividend{Maturity: before, Expiry: time.Unix(-1, 0), Token: polyAddr, Amount: decimal.NewFromInt(1), Name: "Q1"})
			Expect(errors.Is(err, contract.ErrInvalidArgument)).To(BeTrue())

			Expect(backend.Sent()).To(BeEmpty())
		})

		It("surfaces a rejected transaction", func() {
			module.Handle("createDividendWithCheckpoint", func(args []interface{}) ([]interface{}, error) {
				return nil, contracttest.Revert("Expiry is before maturity")
			})
			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			_, err = cp.CreateDividend(ctx, dividend.NewDividend{Maturity: expiry, Expiry: maturity, Token: polyAddr, Amount: decimal.NewFromInt(1), Name: "Q1"})
			Expect(errors.Is(err, contract.ErrTransactionFailed)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Expiry is before maturity"))
		})
	})

	Describe("management", func() {
		It("sends reclaim, withholding and push payment transactions", func() {
			ok := func(args []interface{}) ([]interface{}, error) { return nil, nil }
			module.Handle("reclaimDividend", ok).Handle("withdrawWithholding", ok).Handle("pushDividendPayment", ok)

			cp, err := dividend.NewERC20Checkpoint(moduleAddr, cctx)
			Expect(err).To(Succeed())

			_, err = cp.ReclaimDividend(ctx, 2)
			Expect(err).To(Succeed())
			_, err = cp.WithdrawWithholding(ctx, 1)
			Expect(err).To(Succeed())
			_, err = cp.PushDividendPayment(ctx, 0, 10, 50)
			Expect(err).To(Succeed())

			sent := backend.Sent()
			Expect(sent).To(HaveLen(3))
			Expect(sent[0].Method).To(Equal("reclaimDividend"))
			Expect(sent[0].Args[0].(*big.Int).Int64()).To(Equal(int64(2)))
			Expect(sent[1].Method).To(Equal("withdrawWithholding"))
			Expect(sent[2].Method).To(Equal("pushDividendPayment"))
			Expect(sent[2].Args[1].(*big.Int).Int64()).To(Equal(int64(10)))
			Expect(sent[2].Args[2].(*big.Int).Int64()).To(Equal(int64(50)))
			for _, s := range sent {
				Expect(s.From).To(Equal(auth.From))
			}
		})
	})
})
