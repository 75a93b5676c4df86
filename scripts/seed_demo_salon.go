// Package main implements a standalone seed script that populates the POS
// database with a realistic Brazilian salon catalog: retail products, the
// service menu, a customer base, and a handful of upcoming appointments.
//
// Run: go run scripts/seed_demo_salon.go
//   (from the repo root, or: cd scripts && go run seed_demo_salon.go)
package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	customerCount    = 60
	appointmentCount = 25
	batchSize        = 50
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ---------------------------------------------------------------------------
// Deterministic UUID generation from an index
// ---------------------------------------------------------------------------

// deterministicUUID produces a stable UUID-shaped string from a namespace and
// an integer index so that re-runs always produce the same row IDs.
func deterministicUUID(namespace string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", namespace, index)))
	hex := fmt.Sprintf("%x", h[:16])
	return fmt.Sprintf("%s-%s-4%s-%x%s-%s",
		hex[0:8],
		hex[8:12],
		hex[13:16],
		0x8|(h[8]&0x3),
		hex[17:20],
		hex[20:32],
	)
}

// ---------------------------------------------------------------------------
// Catalog definitions
// ---------------------------------------------------------------------------

type productDef struct {
	Name  string
	Price int64 // cents
	Stock int
}

var products = []productDef{
	{"Shampoo Hidratante 300ml", 4990, 24},
	{"Shampoo Antiqueda 300ml", 5490, 18},
	{"Condicionador Nutritivo 300ml", 4590, 20},
	{"Máscara Capilar Reconstrução 500g", 8990, 12},
	{"Leave-in Protetor Térmico 200ml", 3990, 30},
	{"Óleo de Argan 60ml", 6990, 15},
	{"Sérum Anti-frizz 100ml", 5590, 16},
	{"Spray Fixador Forte 250ml", 3490, 22},
	{"Pomada Modeladora 120g", 2990, 25},
	{"Cera Capilar Matte 85g", 3290, 18},
	{"Tônico Capilar 100ml", 4290, 14},
	{"Ampola de Tratamento 15ml", 1590, 40},
	{"Esmalte Vermelho Clássico", 990, 36},
	{"Esmalte Nude Rosado", 990, 32},
	{"Base Fortalecedora de Unhas", 1290, 28},
	{"Removedor de Esmalte 200ml", 890, 30},
	{"Creme Hidratante para Mãos 75g", 1990, 26},
	{"Protetor Solar Facial FPS 50", 5990, 20},
	{"Água Micelar 200ml", 3190, 18},
	{"Kit Escova Progressiva", 15990, 8},
	{"Tinta Coloração 7.0 Louro Médio", 2790, 15},
	{"Tinta Coloração 5.0 Castanho Claro", 2790, 17},
	{"Pó Descolorante 500g", 7490, 10},
	{"Água Oxigenada 30vol 900ml", 1890, 12},
}

type serviceDef struct {
	Name            string
	Price           int64 // cents
	DurationMinutes int
}

var services = []serviceDef{
	{"Corte feminino", 8000, 45},
	{"Corte masculino", 4500, 30},
	{"Corte infantil", 3500, 30},
	{"Escova modelada", 6000, 40},
	{"Escova progressiva", 25000, 150},
	{"Hidratação profunda", 9000, 60},
	{"Coloração raiz", 12000, 90},
	{"Mechas e luzes", 28000, 180},
	{"Manicure", 3500, 40},
	{"Pedicure", 4000, 50},
	{"Manicure e pedicure", 7000, 80},
	{"Alongamento de unhas em gel", 12000, 120},
	{"Design de sobrancelha", 3000, 20},
	{"Design com henna", 4500, 30},
	{"Maquiagem social", 15000, 60},
	{"Maquiagem para noivas", 35000, 90},
	{"Limpeza de pele", 13000, 75},
	{"Massagem relaxante", 11000, 60},
}

var firstNames = []string{
	"Ana", "Beatriz", "Camila", "Daniela", "Eduarda", "Fernanda", "Gabriela",
	"Helena", "Isabela", "Juliana", "Larissa", "Mariana", "Natália", "Patrícia",
	"Rafaela", "Sofia", "Tatiana", "Vitória", "Carlos", "Diego", "Eduardo",
	"Felipe", "Gustavo", "Henrique", "João", "Lucas", "Marcelo", "Pedro",
	"Rafael", "Thiago",
}

var lastNames = []string{
	"Silva", "Santos", "Oliveira", "Souza", "Costa", "Pereira", "Almeida",
	"Ferreira", "Rodrigues", "Lima", "Carvalho", "Gomes", "Martins", "Ribeiro",
	"Barbosa",
}

// ---------------------------------------------------------------------------
// Seeding
// ---------------------------------------------------------------------------

func main() {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("POSTGRES_USER", "pos"),
		getEnv("POSTGRES_PASSWORD", "pos"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POS_DB_NAME", "pos_db"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	rng := rand.New(rand.NewSource(42))

	start := time.Now()
	seedProducts(ctx, pool)
	seedServices(ctx, pool)
	customerIDs := seedCustomers(ctx, pool, rng)
	seedAppointments(ctx, pool, rng, customerIDs)

	log.Printf("seed complete in %s", time.Since(start).Round(time.Millisecond))
	log.Printf("sample product id (POS_SEED_PRODUCT_ID): %s", deterministicUUID("product", 0))
	log.Printf("sample service id: %s", deterministicUUID("service", 0))
	log.Printf("sample customer id: %s", customerIDs[0])
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(products)*4)
	sb.WriteString("INSERT INTO products (id, name, price, stock) VALUES ")
	for i, p := range products {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, deterministicUUID("product", i), p.Name, p.Price, p.Stock)
	}
	sb.WriteString(" ON CONFLICT (id) DO NOTHING")

	if _, err := pool.Exec(ctx, sb.String(), args...); err != nil {
		log.Fatalf("seed products: %v", err)
	}
	log.Printf("seeded %d products", len(products))
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(services)*4)
	sb.WriteString("INSERT INTO salon_services (id, name, price, duration_minutes) VALUES ")
	for i, s := range services {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, deterministicUUID("service", i), s.Name, s.Price, s.DurationMinutes)
	}
	sb.WriteString(" ON CONFLICT (id) DO NOTHING")

	if _, err := pool.Exec(ctx, sb.String(), args...); err != nil {
		log.Fatalf("seed services: %v", err)
	}
	log.Printf("seeded %d services", len(services))
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) []string {
	ids := make([]string, 0, customerCount)

	var sb strings.Builder
	args := make([]interface{}, 0, batchSize*7)
	rows := 0

	flush := func() {
		if rows == 0 {
			return
		}
		sb.WriteString(" ON CONFLICT (id) DO NOTHING")
		if _, err := pool.Exec(ctx, sb.String(), args...); err != nil {
			log.Fatalf("seed customers: %v", err)
		}
		sb.Reset()
		args = args[:0]
		rows = 0
	}

	for i := 0; i < customerCount; i++ {
		id := deterministicUUID("customer", i)
		ids = append(ids, id)

		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		name := first + " " + last
		phone := fmt.Sprintf("+5511%08d", 90000000+rng.Intn(9999999))
		email := fmt.Sprintf("%s.%s%d@example.com",
			strings.ToLower(normalize(first)), strings.ToLower(normalize(last)), i)
		points := int64(rng.Intn(500))
		visits := rng.Intn(30)

		if rows == 0 {
			sb.WriteString("INSERT INTO customers (id, name, phone, email, points, cashback, visits) VALUES ")
		} else {
			sb.WriteString(", ")
		}
		base := rows * 7
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, id, name, phone, email, points, int64(rng.Intn(2000)), visits)
		rows++

		if rows >= batchSize {
			flush()
		}
	}
	flush()

	log.Printf("seeded %d customers", customerCount)
	return ids
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, customerIDs []string) {
	salonID := getEnv("POS_SEED_SALON_ID", deterministicUUID("salon", 0))
	now := time.Now().UTC()

	var sb strings.Builder
	args := make([]interface{}, 0, appointmentCount*6)
	sb.WriteString("INSERT INTO appointments (id, salon_id, customer_id, service_id, scheduled_at, status) VALUES ")
	for i := 0; i < appointmentCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		scheduledAt := now.Add(time.Duration(rng.Intn(7*24)) * time.Hour).Truncate(30 * time.Minute)
		base := i * 6
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args,
			deterministicUUID("appointment", i),
			salonID,
			customerIDs[rng.Intn(len(customerIDs))],
			deterministicUUID("service", rng.Intn(len(services))),
			scheduledAt,
			"scheduled",
		)
	}
	sb.WriteString(" ON CONFLICT (id) DO NOTHING")

	if _, err := pool.Exec(ctx, sb.String(), args...); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}
	log.Printf("seeded %d appointments for salon %s", appointmentCount, salonID)
}

// normalize strips the accented characters that appear in the name pools so
// they can be used in email addresses.
func normalize(s string) string {
	replacer := strings.NewReplacer(
		"á", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o",
		"ú", "u",
		"ç", "c",
	)
	return replacer.Replace(s)
}
