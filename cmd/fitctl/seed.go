package main

import (
	"context"
	"fittrackr/server/internal/config"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	mongorepo "fittrackr/server/internal/repository/mongo"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed reference data into MongoDB",
}

var seedPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Seed the subscription plan catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
			return seedPlans(ctx, mongorepo.NewMongoPlanRepository(db), cmd)
		})
	},
}

var seedBadgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Seed the badge catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
			return seedBadges(ctx, mongorepo.NewMongoBadgeRepository(db), cmd)
		})
	},
}

var seedExercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "Seed the starter exercise library",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
			return seedExercises(ctx, mongorepo.NewMongoExerciseRepository(db), cmd)
		})
	},
}

var seedProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Seed the starter shop catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
			return seedProducts(ctx, mongorepo.NewMongoProductRepository(db), cmd)
		})
	},
}

var seedAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Seed plans, badges, exercises and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
			if err := seedPlans(ctx, mongorepo.NewMongoPlanRepository(db), cmd); err != nil {
				return err
			}
			if err := seedBadges(ctx, mongorepo.NewMongoBadgeRepository(db), cmd); err != nil {
				return err
			}
			if err := seedExercises(ctx, mongorepo.NewMongoExerciseRepository(db), cmd); err != nil {
				return err
			}
			return seedProducts(ctx, mongorepo.NewMongoProductRepository(db), cmd)
		})
	},
}

func init() {
	seedCmd.AddCommand(seedPlansCmd, seedBadgesCmd, seedExercisesCmd, seedProductsCmd, seedAllCmd)
	rootCmd.AddCommand(seedCmd)
}

// withDB loads the config, connects, runs fn against the application
// database and disconnects.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *mongo.Database) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		_ = mongorepo.DisconnectDB(client)
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return fn(ctx, client.Database(cfg.Database.Name))
}

func seedPlans(ctx context.Context, planRepo repository.PlanRepository, cmd *cobra.Command) error {
	plans := []domain.SubscriptionPlan{
		{Name: "Essential", Code: "essential", PriceMonthly: 19.90, TierRank: 1, TierLabel: "Essential", CommitmentMonths: 0},
		{Name: "Plus", Code: "plus", PriceMonthly: 29.90, TierRank: 2, TierLabel: "Plus", CommitmentMonths: 3},
		{Name: "Premium", Code: "premium", PriceMonthly: 39.90, TierRank: 3, TierLabel: "Premium", CommitmentMonths: 12},
	}
	for i := range plans {
		if err := planRepo.Upsert(ctx, &plans[i]); err != nil {
			return fmt.Errorf("upsert plan %q: %w", plans[i].Code, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d subscription plans\n", len(plans))
	return nil
}

func seedBadges(ctx context.Context, badgeRepo repository.BadgeRepository, cmd *cobra.Command) error {
	badges := []domain.Badge{
		{
			Code:        domain.BadgeCodeRegularity,
			Name:        "Regularity",
			Description: "At least 3 sessions in each of the last 4 weeks",
		},
		{
			Code:        domain.BadgeCodeVolume,
			Name:        "Volume",
			Description: "At least 300 training minutes over the last 4 weeks",
		},
	}
	for i := range badges {
		if err := badgeRepo.Upsert(ctx, &badges[i]); err != nil {
			return fmt.Errorf("upsert badge %q: %w", badges[i].Code, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d badges\n", len(badges))
	return nil
}

func seedExercises(ctx context.Context, exerciseRepo repository.ExerciseRepository, cmd *cobra.Command) error {
	starter := []domain.Exercise{
		{Name: "Back Squat", PrimaryMuscle: "Legs", Equipment: "Barbell", Difficulty: "Intermediate"},
		{Name: "Bench Press", PrimaryMuscle: "Chest", Equipment: "Barbell", Difficulty: "Intermediate"},
		{Name: "Deadlift", PrimaryMuscle: "Back", Equipment: "Barbell", Difficulty: "Advanced"},
		{Name: "Pull-up", PrimaryMuscle: "Back", Equipment: "Bodyweight", Difficulty: "Intermediate"},
		{Name: "Overhead Press", PrimaryMuscle: "Shoulders", Equipment: "Barbell", Difficulty: "Intermediate"},
		{Name: "Plank", PrimaryMuscle: "Core", Equipment: "Bodyweight", Difficulty: "Beginner"},
		{Name: "Treadmill Run", PrimaryMuscle: "Cardio", Equipment: "Machine", Difficulty: "Beginner"},
	}

	existing, err := exerciseRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.Name] = true
	}

	inserted := 0
	for i := range starter {
		if known[starter[i].Name] {
			continue
		}
		if _, err := exerciseRepo.Create(ctx, &starter[i]); err != nil {
			return fmt.Errorf("create exercise %q: %w", starter[i].Name, err)
		}
		inserted++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d exercises (%d already present)\n", inserted, len(starter)-inserted)
	return nil
}

func seedProducts(ctx context.Context, productRepo repository.ProductRepository, cmd *cobra.Command) error {
	starter := []domain.Product{
		{Name: "Shaker Bottle 700ml", Category: "Accessory", Price: 9.90, StockQty: 120},
		{Name: "Whey Protein 1kg", Category: "Nutrition", Price: 27.50, StockQty: 60},
		{Name: "Lifting Straps", Category: "Accessory", Price: 12.00, StockQty: 80},
		{Name: "Gym Towel", Category: "Apparel", Price: 8.50, StockQty: 150},
		{Name: "Resistance Band Set", Category: "Accessory", Price: 19.90, StockQty: 45},
	}

	existing, err := productRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Name] = true
	}

	inserted := 0
	for i := range starter {
		if known[starter[i].Name] {
			continue
		}
		if _, err := productRepo.Create(ctx, &starter[i]); err != nil {
			return fmt.Errorf("create product %q: %w", starter[i].Name, err)
		}
		inserted++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products (%d already present)\n", inserted, len(starter)-inserted)
	return nil
}
