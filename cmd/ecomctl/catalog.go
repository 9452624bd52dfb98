package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecom/internal/storage"
)

// catalogFile - формат файла импорта каталога.
type catalogFile struct {
	Products []catalogItem `yaml:"products"`
}

type catalogItem struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Quantity int    `yaml:"quantity"`
	Img      string `yaml:"img"`
}

func (i catalogItem) product() (domain.Product, error) {
	price, err := decimal.NewFromString(i.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %q: price %q: %w", i.Name, i.Price, err)
	}
	return domain.Product{
		Type:     i.Type,
		Name:     i.Name,
		Price:    price,
		Quantity: i.Quantity,
		Img:      i.Img,
	}, nil
}

func loadCatalog(path string) ([]domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(file.Products) == 0 {
		return nil, fmt.Errorf("catalog %s has no products", path)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for _, item := range file.Products {
		p, err := item.product()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func newCatalogCmd(c *cli) *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog products",
	}

	var publish bool
	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create every product listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			products, err := loadCatalog(args[0])
			if err != nil {
				return err
			}

			var producer *kafka.Producer
			if publish {
				if len(c.cfg.KafkaBrokers) == 0 {
					return errors.New("--publish requires ECOM_KAFKA_BROKERS")
				}
				producer, err = kafka.NewProducer(c.cfg.KafkaBrokers)
				if err != nil {
					return fmt.Errorf("kafka producer: %w", err)
				}
				defer func() { _ = producer.Close() }()
			}

			return c.withFactory(ctx, func(f *storage.Factory) error {
				repo, err := f.Products(ctx)
				if err != nil {
					return err
				}
				for _, p := range products {
					created, err := repo.Create(ctx, p)
					if err != nil {
						return err
					}
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", created.ID, created.Name, created.Price.StringFixed(2)); err != nil {
						return err
					}
					if producer != nil {
						if err := producer.PublishProductEvent(kafka.NewProductEvent(kafka.EventTypeProductImported, created)); err != nil {
							c.logger.WithError(err).WithField("product_id", created.ID).Warn("failed to publish product event")
						}
					}
				}
				c.logger.WithField("count", len(products)).Info("catalog imported")
				return nil
			})
		},
	}
	importCmd.Flags().BoolVar(&publish, "publish", false, "publish product.imported events to Kafka")

	catalog.AddCommand(importCmd)
	return catalog
}
