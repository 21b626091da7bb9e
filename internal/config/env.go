package config

// DefaultEnvCloudName names the cloud built from OS_* variables unless
// OS_CLOUD_NAME says otherwise.
const DefaultEnvCloudName = "envvars"

// envAuthKeys maps OS_* variables onto auth keys; the first set variable wins.
var envAuthKeys = []struct {
	key  string
	vars []string
}{
	{"auth_url", []string{"OS_AUTH_URL"}},
	{"username", []string{"OS_USERNAME"}},
	{"password", []string{"OS_PASSWORD"}},
	{"project_name", []string{"OS_PROJECT_NAME", "OS_TENANT_NAME"}},
	{"project_id", []string{"OS_PROJECT_ID", "OS_TENANT_ID"}},
	{"user_domain_name", []string{"OS_USER_DOMAIN_NAME"}},
	{"project_domain_name", []string{"OS_PROJECT_DOMAIN_NAME"}},
	{"domain_name", []string{"OS_DOMAIN_NAME"}},
	{"access_key", []string{"OS_ACCESS_KEY"}},
	{"secret_key", []string{"OS_SECRET_KEY"}},
}

var envCloudKeys = []struct {
	key string
	env string
}{
	{"region_name", "OS_REGION_NAME"},
	{"identity_api_version", "OS_IDENTITY_API_VERSION"},
	{"interface", "OS_INTERFACE"},
}

// environmentCloud synthesises a cloud entry from OS_* variables.
// Nothing is returned unless OS_AUTH_URL is set.
func (l *Loader) environmentCloud() (string, map[string]any, bool) {
	if v, ok := l.lookupEnv("OS_AUTH_URL"); !ok || v == "" {
		return "", nil, false
	}

	auth := map[string]any{}
	for _, k := range envAuthKeys {
		for _, name := range k.vars {
			if v, ok := l.lookupEnv(name); ok && v != "" {
				auth[k.key] = v
				break
			}
		}
	}

	raw := map[string]any{"auth": auth}
	for _, k := range envCloudKeys {
		if v, ok := l.lookupEnv(k.env); ok && v != "" {
			raw[k.key] = v
		}
	}

	name := DefaultEnvCloudName
	if v, ok := l.lookupEnv("OS_CLOUD_NAME"); ok && v != "" {
		name = v
	}
	return name, raw, true
}
