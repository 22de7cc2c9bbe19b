package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tryon-backend/infrastructure/config"
	"tryon-backend/infrastructure/di"
	"tryon-backend/pkg/auth"
)

// Global variables for Lambda lifecycle management
var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambda

	// container holds the dependency injection container
	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler := container.Router.Setup()
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.New(chiRouter)

	log.Printf("Lambda cold start completed in %v", time.Since(coldStartTime))
}

// trustedHeaders are the identity headers the router trusts. They must
// never survive from the client request; only this handler may set them,
// from the verified authorizer context.
var trustedHeaders = []string{
	"X-API-Gateway-Authorized",
	"X-User-ID",
	"X-User-Email",
	"X-User-Groups",
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	stripForgedIdentity(req.Headers)

	// The Cognito authorizer attaches verified claims to the request
	// context. Translate them into the trusted headers the auth
	// middleware reads.
	if claims, ok := req.RequestContext.Authorizer["claims"].(map[string]interface{}); ok {
		principal := auth.PrincipalFromClaims(claims)
		if principal.UserID != "" {
			req.Headers["X-API-Gateway-Authorized"] = "true"
			req.Headers["X-User-ID"] = principal.UserID
			req.Headers["X-User-Email"] = principal.Email
			req.Headers["X-User-Groups"] = groupsHeader(claims["cognito:groups"])
		}
	}

	resp, err := chiLambda.ProxyWithContext(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if err != nil && container != nil && container.Logger != nil {
		container.Logger.Error("Lambda proxy error",
			zap.String("path", req.Path),
			zap.String("method", req.HTTPMethod),
			zap.Error(err),
		)
	}

	return resp, err
}

// stripForgedIdentity removes any client-supplied copy of the trusted
// identity headers, in every capitalization.
func stripForgedIdentity(headers map[string]string) {
	for key := range headers {
		for _, trusted := range trustedHeaders {
			if strings.EqualFold(key, trusted) {
				delete(headers, key)
			}
		}
	}
}

// groupsHeader flattens the cognito:groups claim into the comma-joined
// header form. The REST authorizer delivers groups either as a JSON list
// or as a bracketed string like "[Admin SuperAdmin]".
func groupsHeader(raw interface{}) string {
	if s, ok := raw.(string); ok {
		s = strings.Trim(s, "[]")
		s = strings.TrimSpace(s)
		if s == "" {
			return ""
		}
		return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
			return r == ' ' || r == ','
		}), ",")
	}
	return strings.Join(auth.NormalizeGroups(raw), ",")
}

func main() {
	lambda.Start(Handler)
}
