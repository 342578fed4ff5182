package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/bnema/wgate/pkg/logger"
)

// loadConfigFromEnv overrides file values with WGATE_* environment variables.
func loadConfigFromEnv(config *Config) {
	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
			logger.Debug("Using environment variable", "key", key, "value", val)
		}
	}
	setInt := func(key string, dst *int) {
		if val := os.Getenv(key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				logger.Warn("Ignoring non-numeric environment variable", "key", key, "value", val)
				return
			}
			*dst = n
			logger.Debug("Using environment variable", "key", key, "value", n)
		}
	}

	setString("WGATE_LOG_LEVEL", &config.General.LogLevel)

	setString("WGATE_BRIDGE_NAME", &config.Bridge.Name)
	setString("WGATE_BRIDGE_CIDR", &config.Bridge.CIDR)
	setString("WGATE_UPLINK_INTERFACE", &config.Host.UplinkInterface)

	setString("WGATE_TEMPLATE", &config.Template.Name)
	setString("WGATE_TEMPLATE_STORAGE", &config.Template.Storage)

	setInt("WGATE_GATEWAY_ID", &config.Gateway.ID)
	setString("WGATE_GATEWAY_IP", &config.Gateway.IP)
	setString("WGATE_STORAGE", &config.Gateway.Storage)

	setString("WGATE_VPN_SUBNET", &config.VPN.Subnet)
	setString("WGATE_VPN_HOST_DIR", &config.VPN.HostConfigDir)
	setString("WGATE_VPN_CONTAINER_DIR", &config.VPN.ContainerConfigDir)
	setString("WGATE_NAT_INTERFACE", &config.VPN.NATInterface)

	if val := os.Getenv("WGATE_FIREWALL_PRUNE"); val != "" {
		config.Firewall.Prune = strings.EqualFold(val, "true")
		logger.Debug("Using environment variable", "key", "WGATE_FIREWALL_PRUNE", "value", config.Firewall.Prune)
	}
}
