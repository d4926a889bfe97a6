package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"lab-backend/internal/config"
	"lab-backend/internal/db"
)

// Tables in dependency order; usuarios is kept so logins survive a reset.
var tables = []string{"movimentacoes", "manutencoes", "equipamentos", "materiais"}

const seedSQL = `
INSERT INTO materiais (nome, tipo, fabricante, quantidade, unidade, estoque_atual, estoque_minimo, validade, preco, codigo) VALUES
  ('Etanol 70%', 'Solvente', 'Merck', 10, 'L', 10, 2, CURRENT_DATE + 180, 18.90, 'ETH-70'),
  ('Ácido Clorídrico', 'Ácido', 'Synth', 5, 'L', 1, 2, CURRENT_DATE + 5, 42.00, 'HCL-01'),
  ('Acetona', 'Solvente', 'Dinâmica', 4, 'L', 4, 1, CURRENT_DATE - 3, 25.50, 'ACE-01');
INSERT INTO equipamentos (codigo, nome, modelo, fabricante, categoria, localizacao, status) VALUES
  ('CEN-01', 'Centrífuga', '5424R', 'Eppendorf', 'Centrífugas', 'Sala 2', 'ativo'),
  ('BAL-01', 'Balança analítica', 'AUW220D', 'Shimadzu', 'Balanças', 'Sala 1', 'ativo');
INSERT INTO manutencoes (equipamento_id, tipo, descricao, data_agendada, prioridade, status)
  SELECT id, 'calibracao', 'Calibração anual', CURRENT_DATE + 10, 'alta', 'agendada' FROM equipamentos WHERE codigo = 'BAL-01';
`

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "Path to the YAML config file")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt")
	seed := flag.Bool("seed", false, "Insert sample materials, equipment and maintenance after the reset")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("   Reset Lab Database")
	fmt.Println("========================================")
	fmt.Printf("Database: %s@%s:%d/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	fmt.Println()
	fmt.Println("This will DELETE all materials, stock movements, equipment and maintenance records.")
	fmt.Println("User accounts are kept.")

	if !*yes {
		fmt.Print("Type 'yes' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" {
			fmt.Println("Reset cancelled.")
			return
		}
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			log.Fatalf("Failed to truncate %s: %v", table, err)
		}
		fmt.Printf("  ✓ %s\n", table)
	}

	if *seed {
		if _, err := tx.Exec(ctx, seedSQL); err != nil {
			log.Fatalf("Failed to seed sample data: %v", err)
		}
		fmt.Println("  ✓ sample data")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	fmt.Println()
	fmt.Println("Database reset complete.")
}
