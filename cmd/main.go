package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/parthmodi152/podcast-workflow-mvp/application/services"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/adapters"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/gin_interface/controllers"
	"github.com/parthmodi152/podcast-workflow-mvp/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	gptConfig, err := config.GetGptConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get gpt config")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	hedraConfig, err := config.GetHedraConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get hedra config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	databaseConfig, err := config.GetDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get database config")
	}

	pipelineConfig, err := config.GetPipelineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get pipeline config")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(pipelineConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	s3Client := s3.New(sess)
	dynamoClient := dynamodb.New(sess)

	pipelineStore, err := adapters.NewSQLitePipelineStore(databaseConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open pipeline store")
	}
	defer func() {
		if err := pipelineStore.Close(); err != nil {
			zeroLogger.Error(err, "Failed to close pipeline store")
		}
	}()

	contentFetcher := adapters.NewContentFetcher(zeroLogger)
	dialogueGenerator := adapters.NewDialogueGenerator(gptConfig, zeroLogger)
	speechSynthesizer := adapters.NewSpeechSynthesizer(contentFetcher, elevenLabsConfig, zeroLogger)
	voiceCloner := adapters.NewVoiceCloner(contentFetcher, elevenLabsConfig, zeroLogger)
	avatarRenderer := adapters.NewAvatarRenderer(contentFetcher, hedraConfig, zeroLogger)
	mediaStore := adapters.NewS3MediaStore(zeroLogger, s3Client, s3Config)
	episodeRegistry := adapters.NewDynamoEpisodeRegistry(zeroLogger, dynamoClient, dynamoConfig)
	concatenator := adapters.NewFFmpegConcatenator(zeroLogger)

	stitchWorker := services.NewStitchWorker(zeroLogger, pipelineStore, mediaStore, concatenator, episodeRegistry, pipelineConfig)
	stitchGate := services.NewStitchGate(zeroLogger, pipelineStore, stitchWorker, workerPool)
	avatarPoller := services.NewAvatarPoller(zeroLogger, pipelineStore, avatarRenderer, mediaStore, stitchGate)
	avatarWorker := services.NewAvatarWorker(zeroLogger, pipelineStore, avatarRenderer, mediaStore, avatarPoller, pipelineConfig)
	ttsWorker := services.NewTTSWorker(zeroLogger, pipelineStore, speechSynthesizer, mediaStore, avatarWorker, workerPool, pipelineConfig)
	scriptCreator := services.NewScriptCreator(zeroLogger, pipelineStore, dialogueGenerator, ttsWorker, workerPool)
	statusReader := services.NewStatusReader(pipelineStore)
	voiceManager := services.NewVoiceManager(zeroLogger, pipelineStore, voiceCloner, mediaStore)
	reconciler := services.NewReconciler(zeroLogger, pipelineStore, avatarPoller, workerPool, pipelineConfig)

	reconcilerCtx, stopReconciler := context.WithCancel(context.Background())
	defer stopReconciler()
	go reconciler.Run(reconcilerCtx)

	router := gin.Default()
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}
	router.Use(middleware.RequestLogger(zeroLogger))

	scriptsController := controllers.NewScriptsController(zeroLogger, scriptCreator, statusReader, ttsWorker)
	adminController := controllers.NewPipelineAdminController(zeroLogger, pipelineStore, reconciler, avatarWorker, workerPool)
	mediaController := controllers.NewMediaController(zeroLogger, pipelineStore, mediaStore)
	voicesController := controllers.NewVoicesController(zeroLogger, voiceManager)

	scriptsController.RegisterRoutes(router)
	adminController.RegisterRoutes(router)
	mediaController.RegisterRoutes(router)
	voicesController.RegisterRoutes(router)

	if err := router.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
