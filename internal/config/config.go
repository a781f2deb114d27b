package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDRadar   string
	MQTTClientIDIMU     string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string
	MQTTClientIDMock    string

	// Topics
	TopicIMU      string
	TopicGPS      string
	TopicScreen   string
	TopicNavState string

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	MagI2CBus     string
	MagI2CAddr    uint16
	// Hard/soft iron correction: corrected = (raw - offset) / scale, µT
	MagOffset [3]float64
	MagScale  [3]float64

	// GPS
	GPSSerialPort   string
	GPSBaudRate     int
	GPSProviderName string

	// Location updates
	LocationProviders    []string
	LocationMinTimeMs    int
	LocationMinDistanceM float64

	// Compass
	NaturalRotation     int // degrees, 0/90/180/270
	CompassSmoothing    float64
	DeclinationModel    string // "igrf" or "fixed"
	DeclinationFixedDeg float64

	// Destination preferences
	PrefsBackend string // "file" or "redis"
	PrefsName    string
	PrefsDir     string
	RedisAddr    string

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayEnabled        bool
	DisplayI2CBus         string
	DisplayRadarI2CAddr   uint16
	DisplayRotateI2CAddr  uint16
	DisplayUpdateInterval int // milliseconds

	// Geocoding
	GoogleMapsAPIKey string

	// Logging
	LogLevel string
	LogFile  string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration that runs against a local broker with the
// destination kept in a file next to the binary.
func Default() *Config {
	return &Config{
		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDRadar:   "inertial-radar",
		MQTTClientIDIMU:     "inertial-radar-imu",
		MQTTClientIDGPS:     "inertial-radar-gps",
		MQTTClientIDConsole: "inertial-radar-console",
		MQTTClientIDMock:    "inertial-radar-mock",

		TopicIMU:      "radar/imu",
		TopicGPS:      "radar/gps",
		TopicScreen:   "radar/screen",
		TopicNavState: "radar/nav",

		IMUSPIDevice:  "/dev/spidev0.0",
		IMUCSPin:      "GPIO8",
		IMUAccelRange: 0,
		MagI2CBus:     "",
		MagI2CAddr:    0x0D,
		MagScale:      [3]float64{1, 1, 1},

		GPSSerialPort:   "/dev/serial0",
		GPSBaudRate:     9600,
		GPSProviderName: "gps",

		LocationProviders:    []string{"gps", "network"},
		LocationMinTimeMs:    15000,
		LocationMinDistanceM: 0,

		NaturalRotation:     0,
		CompassSmoothing:    0.15,
		DeclinationModel:    "igrf",
		DeclinationFixedDeg: 0,

		PrefsBackend: "file",
		PrefsName:    "radar",
		PrefsDir:     ".",

		IMUSampleInterval:  50,
		ConsoleLogInterval: 1000,

		WebServerPort: 8080,

		DisplayEnabled:        false,
		DisplayI2CBus:         "",
		DisplayRadarI2CAddr:   0x3C,
		DisplayRotateI2CAddr:  0x3D,
		DisplayUpdateInterval: 200,

		LogLevel: "info",
	}
}

// Load reads the configuration file and returns a Config struct. Keys not
// present in the file keep their Default value.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines from r on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_RADAR":
		c.MQTTClientIDRadar = value
	case "MQTT_CLIENT_ID_IMU":
		c.MQTTClientIDIMU = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_MOCK":
		c.MQTTClientIDMock = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_SCREEN":
		c.TopicScreen = value
	case "TOPIC_NAV_STATE":
		c.TopicNavState = value

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "MAG_I2C_BUS":
		c.MagI2CBus = value
	case "MAG_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MAG_I2C_ADDR %q: %w", value, err)
		}
		c.MagI2CAddr = uint16(addr)
	case "MAG_OFFSET_X", "MAG_OFFSET_Y", "MAG_OFFSET_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		c.MagOffset[axisIndex(key)] = v
	case "MAG_SCALE_X", "MAG_SCALE_Y", "MAG_SCALE_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", key, v)
		}
		c.MagScale[axisIndex(key)] = v

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_PROVIDER_NAME":
		c.GPSProviderName = value

	// Location updates
	case "LOCATION_PROVIDERS":
		var providers []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				providers = append(providers, p)
			}
		}
		c.LocationProviders = providers
	case "LOCATION_MIN_TIME_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOCATION_MIN_TIME_MS %q: %w", value, err)
		}
		c.LocationMinTimeMs = ms
	case "LOCATION_MIN_DISTANCE_M":
		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid LOCATION_MIN_DISTANCE_M %q: %w", value, err)
		}
		c.LocationMinDistanceM = d

	// Compass
	case "NATURAL_ROTATION":
		deg, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid NATURAL_ROTATION %q: %w", value, err)
		}
		if deg != 0 && deg != 90 && deg != 180 && deg != 270 {
			return fmt.Errorf("NATURAL_ROTATION must be 0, 90, 180 or 270, got %d", deg)
		}
		c.NaturalRotation = deg
	case "COMPASS_SMOOTHING":
		s, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid COMPASS_SMOOTHING %q: %w", value, err)
		}
		if s <= 0 || s > 1 {
			return fmt.Errorf("COMPASS_SMOOTHING must be in (0,1], got %g", s)
		}
		c.CompassSmoothing = s
	case "DECLINATION_MODEL":
		c.DeclinationModel = value
	case "DECLINATION_FIXED_DEG":
		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DECLINATION_FIXED_DEG %q: %w", value, err)
		}
		c.DeclinationFixedDeg = d

	// Destination preferences
	case "PREFS_BACKEND":
		c.PrefsBackend = value
	case "PREFS_NAME":
		c.PrefsName = value
	case "PREFS_DIR":
		c.PrefsDir = value
	case "REDIS_ADDR":
		c.RedisAddr = value

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = enabled
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_RADAR_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_RADAR_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayRadarI2CAddr = uint16(addr)
	case "DISPLAY_ROTATE_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ROTATE_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayRotateI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	// Geocoding
	case "GOOGLE_MAPS_API_KEY":
		c.GoogleMapsAPIKey = value

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = value
	case "LOG_FILE":
		c.LogFile = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// axisIndex maps a key ending in _X, _Y or _Z to 0, 1 or 2.
func axisIndex(key string) int {
	return int(key[len(key)-1] - 'X')
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.PrefsName == "" {
		return fmt.Errorf("PREFS_NAME is required")
	}
	if c.PrefsBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when PREFS_BACKEND=redis")
	}
	if len(c.LocationProviders) == 0 {
		return fmt.Errorf("LOCATION_PROVIDERS must name at least one provider")
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL must be positive")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive")
	}
	return nil
}

// LocationMinTime is LOCATION_MIN_TIME_MS as a duration.
func (c *Config) LocationMinTime() time.Duration {
	return time.Duration(c.LocationMinTimeMs) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
