package main

import (
	"log"
	"time"

	"agroshop/internal/config"
	"agroshop/internal/domain/model"
	"agroshop/internal/handler"
	"agroshop/internal/infra/db"
	"agroshop/internal/infra/localstore"
	infraRepo "agroshop/internal/infra/repository"
	"agroshop/internal/server"
	"agroshop/internal/usecase"
	auth "agroshop/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductVariant{},
		&model.CartDocument{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成

	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//カートの二重保存（端末ローカルのファイル + DBのリモートドキュメント）
	localStore, err := localstore.NewFileStore(cfg.CartDataDir)
	if err != nil {
		log.Fatal(err)
	}
	remoteStore := infraRepo.NewCartDocumentGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo)

	sessions := usecase.NewCartSessionManager(localStore, remoteStore)
	cartSvc := usecase.NewCartService(sessions, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo, cartSvc)

	//Handler生成
	handlers := server.Handlers{
		Auth:    handler.NewAuthHandler(registerUC, loginUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartSvc),
		Order:   handler.NewOrderHandler(orderUC),
	}

	//Server起動
	if err := server.Start(cfg, handlers); err != nil {
		log.Fatal(err)
	}
}
