package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"

	"github.com/composekit/composekit/pkg/docker"
)

// AddRegistryAndTag qualifies an image reference from the environment.
// DOCKER_REGISTRY is prepended and DOCKER_TAG supplies a missing tag,
// defaulting to "latest". A non-empty scope checks DOCKER_<SCOPE>_REGISTRY /
// DOCKER_<SCOPE>_TAG first, falling back to the unscoped variables. An image
// that already carries a registry or a tag keeps it.
func AddRegistryAndTag(image, scope string) string {
	registry := scopedEnv("DOCKER_%sREGISTRY", scope)
	tag := scopedEnv("DOCKER_%sTAG", scope)
	if tag == "" {
		tag = "latest"
	}

	name := image
	if registry != "" && !strings.Contains(strings.SplitN(name, "/", 2)[0], ".") {
		name = strings.TrimSuffix(registry, "/") + "/" + name
	}
	if !hasTag(name) {
		name = name + ":" + tag
	}
	return name
}

func scopedEnv(format, scope string) string {
	if scope != "" {
		prefix := strings.ToUpper(scope) + "_"
		if v := os.Getenv(fmt.Sprintf(format, prefix)); v != "" {
			return v
		}
	}
	return os.Getenv(fmt.Sprintf(format, ""))
}

// hasTag reports whether the reference ends in an explicit tag. A colon in
// the last path segment is a tag; a colon before a slash is a registry port.
func hasTag(image string) bool {
	last := image
	if i := strings.LastIndex(image, "/"); i >= 0 {
		last = image[i+1:]
	}
	return strings.Contains(last, ":")
}

// ECRLogin authenticates the runtime client against the account's ECR
// registry using ambient AWS credentials.
func ECRLogin(ctx context.Context, client docker.Client) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}

	svc := ecr.NewFromConfig(cfg)
	out, err := svc.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return fmt.Errorf("fetching ecr authorization token: %w", err)
	}
	if len(out.AuthorizationData) == 0 || out.AuthorizationData[0].AuthorizationToken == nil {
		return fmt.Errorf("ecr returned no authorization data")
	}

	auth := out.AuthorizationData[0]
	decoded, err := base64.StdEncoding.DecodeString(*auth.AuthorizationToken)
	if err != nil {
		return fmt.Errorf("decoding ecr authorization token: %w", err)
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return fmt.Errorf("malformed ecr authorization token")
	}

	endpoint := ""
	if auth.ProxyEndpoint != nil {
		endpoint = strings.TrimPrefix(*auth.ProxyEndpoint, "https://")
	}
	return client.RegistryLogin(ctx, username, password, endpoint)
}
