package inject

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/imagenproxy/internal/config"
	"github.com/dmorgan81/imagenproxy/internal/handler"
	"github.com/dmorgan81/imagenproxy/internal/image"
	"github.com/dmorgan81/imagenproxy/internal/lambdaurl"
	"github.com/dmorgan81/imagenproxy/internal/log"
	"github.com/dmorgan81/imagenproxy/internal/param"
	"github.com/dmorgan81/imagenproxy/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
)

func Setup(ctx context.Context, cfg config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[config.Config](injector, cfg)
	do.ProvideValue[*slog.Logger](injector, log)
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, func(i *do.Injector) (param.Fetcher, error) {
		if cfg.APIKeyParam != "" {
			return param.NewParameterStoreFetcher(i)
		}
		return param.NewEnvFetcher(), nil
	})

	do.Provide[image.Generator](injector, image.NewImagenGenerator)
	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*gin.Engine](injector, server.NewRouter)
	do.Provide[*lambdaurl.Adapter](injector, lambdaurl.NewAdapter)

	return injector
}
