package wallet

import (
	"github.com/gofiber/fiber/v2"

	"dice-settle/internal/pubkey"
)

func RegisterRoutes(app fiber.Router, service *Service) {

	app.Get("/wallet/balance/:account", func(c *fiber.Ctx) error {
		account, err := pubkey.Parse(c.Params("account"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		b, err := service.Balance(account)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"account": account, "balance": b})
	})
}

// RegisterAdminRoutes mounts the faucet used to seed player and house
// balances.
func RegisterAdminRoutes(app fiber.Router, service *Service) {

	app.Post("/wallet/credit", func(c *fiber.Ctx) error {
		type Req struct {
			Account pubkey.Key `json:"account"`
			Amount  uint64     `json:"amount"`
		}
		var r Req
		if err := c.BodyParser(&r); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		tx, err := service.db.Begin()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if err := service.Credit(tx, r.Account, r.Amount); err != nil {
			tx.Rollback()
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if err := tx.Commit(); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "credited"})
	})
}
