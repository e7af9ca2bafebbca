package casino

import (
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"dice-settle/internal/pubkey"
	"dice-settle/internal/sigverify"
	"dice-settle/internal/wallet"
)

func statusFor(err error) int {
	switch {
	case IsBindingError(err),
		errors.Is(err, sigverify.ErrMalformed),
		errors.Is(err, sigverify.ErrInvalidSignature),
		errors.Is(err, ErrInvalidBet),
		errors.Is(err, ErrInvalidRoll),
		errors.Is(err, ErrMaxBet),
		errors.Is(err, ErrOverflow),
		errors.Is(err, ErrBetNotExpired),
		errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrAmountRange):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrBetNotFound), errors.Is(err, ErrVaultNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrTransferFailed), errors.Is(err, ErrSeedInUse):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func betAddress(c *fiber.Ctx) (pubkey.Key, error) {
	return pubkey.Parse(c.Params("address"))
}

func RegisterRoutes(r fiber.Router, service *Service) {

	r.Post("/casino/bets", func(c *fiber.Ctx) error {

		type Req struct {
			Player pubkey.Key `json:"player"`
			Seed   uint64     `json:"seed"`
			Amount uint64     `json:"amount"`
			Roll   uint8      `json:"roll"`
		}

		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		bet, err := service.PlaceBet(c.UserContext(), PlaceRequest{
			Player: body.Player,
			Seed:   body.Seed,
			Amount: body.Amount,
			Roll:   body.Roll,
		})
		if err != nil {
			return fail(c, err)
		}

		return c.JSON(fiber.Map{
			"bet":     bet,
			"message": hex.EncodeToString(bet.Bytes()),
		})
	})

	r.Get("/casino/bets/:address", func(c *fiber.Ctx) error {
		addr, err := betAddress(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		bet, err := service.Bet(c.UserContext(), addr)
		if err != nil {
			return fail(c, err)
		}

		return c.JSON(fiber.Map{
			"bet":     bet,
			"message": hex.EncodeToString(bet.Bytes()),
		})
	})

	r.Post("/casino/bets/:address/settle", func(c *fiber.Ctx) error {

		type Instruction struct {
			Program pubkey.Key `json:"program"`
			Data    string     `json:"data"`
		}
		type Req struct {
			Signature    string        `json:"signature"`
			Instructions []Instruction `json:"instructions"`
		}

		addr, err := betAddress(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		sig, err := hex.DecodeString(body.Signature)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "signature must be hex"})
		}

		records := make([]sigverify.Record, 0, len(body.Instructions))
		for _, ix := range body.Instructions {
			data, err := hex.DecodeString(ix.Data)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "instruction data must be hex"})
			}
			records = append(records, sigverify.Record{Program: ix.Program, Data: data})
		}

		result, err := service.Settle(c.UserContext(), addr, sig, records)
		if err != nil {
			return fail(c, err)
		}

		return c.JSON(result)
	})

	r.Post("/casino/bets/:address/refund", func(c *fiber.Ctx) error {
		addr, err := betAddress(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		bet, err := service.RefundBet(c.UserContext(), addr)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"bet": bet})
	})

	r.Get("/casino/results/:address", func(c *fiber.Ctx) error {
		addr, err := betAddress(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		result, err := service.Result(c.UserContext(), addr)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	// Anyone holding the signature can recompute the outcome.
	r.Get("/casino/roll/:signature", func(c *fiber.Ctx) error {
		sig, err := hex.DecodeString(c.Params("signature"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "signature must be hex"})
		}
		return c.JSON(fiber.Map{
			"signature": c.Params("signature"),
			"outcome":   RollFromSignature(sig),
		})
	})

	// The house key and the escrow that pays wins, so players can check
	// the vault covers a payout before betting.
	r.Get("/casino/vault", func(c *fiber.Ctx) error {
		vault, err := service.Vault(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		balance, err := service.wallet.Balance(vault.Address)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"house":   service.House(),
			"vault":   vault,
			"balance": balance,
		})
	})

	r.Get("/casino/leaderboard", func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 10)
		return c.JSON(service.Leaderboard(n))
	})

	r.Get("/casino/rtp", func(c *fiber.Ctx) error {
		return c.JSON(service.RTP())
	})
}

func RegisterAdminRoutes(r fiber.Router, service *Service) {

	r.Post("/vault", func(c *fiber.Ctx) error {
		vault, err := service.OpenVault(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(vault)
	})

	r.Post("/vault/fund", func(c *fiber.Ctx) error {
		type Req struct {
			From   pubkey.Key `json:"from"`
			Amount uint64     `json:"amount"`
		}

		var body Req
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}

		if err := service.FundVault(c.UserContext(), body.From, body.Amount); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"status": "funded"})
	})
}
