package command

import (
	"errors"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

func seedCommand() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:    "seed",
		Short:  "Populate the guestbook with fake entries",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			faker := gofakeit.New(0)
			for range count {
				if _, err := store.CreateGuestbook(cmd.Context(), fakeEntry(faker)); err != nil {
					return err
				}
			}

			logger.InfoContext(cmd.Context(), "guestbook seeded", slog.Int("count", count))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of entries to create")
	return cmd
}

func fakeEntry(faker *gofakeit.Faker) db.Guestbook {
	return db.Guestbook{
		Name:    faker.Name(),
		Message: faker.Sentence(12),
		Phone:   faker.Phone(),
		Email:   faker.Email(),
		Status:  int64(faker.Number(0, 1)),
		AddTime: time.Now().Unix(),
		AddIP:   faker.IPv4Address(),
	}
}
