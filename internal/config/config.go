// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Scene    SceneConfig    `yaml:"scene"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width        int        `yaml:"width"`
	Height       int        `yaml:"height"`
	Fullscreen   bool       `yaml:"fullscreen"`
	VSync        bool       `yaml:"vsync"`
	Backend      string     `yaml:"backend"` // "sdl" or "glfw"
	ClearColor   [4]float32 `yaml:"clear_color"`
	StrictShader bool       `yaml:"strict_shaders"` // fail on shader diagnostics
}

// CameraConfig holds the initial camera state and controls.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	Fov         float32    `yaml:"fov"`
	Speed       float32    `yaml:"speed"`       // units per second
	Sensitivity float32    `yaml:"sensitivity"` // degrees per pixel
}

// SceneConfig holds the light orbit and room layout.
type SceneConfig struct {
	OrbitRadius float32 `yaml:"orbit_radius"`
	OrbitHeight float32 `yaml:"orbit_height"`
	OrbitSpeed  float32 `yaml:"orbit_speed"` // degrees per second
	RoomMin     [3]int  `yaml:"room_min"`
	RoomMax     [3]int  `yaml:"room_max"`

	Models []ModelConfig `yaml:"models"`
}

// ModelConfig places a glTF model, textured by name from the stock set.
type ModelConfig struct {
	Name     string     `yaml:"name"`
	Path     string     `yaml:"path"` // relative to the asset root
	Diffuse  string     `yaml:"diffuse"`
	Specular string     `yaml:"specular"` // defaults to diffuse
	Material string     `yaml:"material"`
	Position [3]float32 `yaml:"position"`
	Scale    float32    `yaml:"scale"`
}

// AssetsConfig holds asset file locations.
type AssetsConfig struct {
	Root          string `yaml:"root"` // textures are resolved below this directory
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	ShowFPS bool   `yaml:"show_fps"` // log frame rate once a second
}

// Backends.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Backend:    BackendSDL,
			ClearColor: [4]float32{0.2, 0.3, 0.3, 1.0},
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 3},
			Yaw:         -90,
			Pitch:       0,
			Fov:         45,
			Speed:       1.5,
			Sensitivity: 0.2,
		},
		Scene: SceneConfig{
			OrbitRadius: 5,
			OrbitHeight: 1,
			OrbitSpeed:  5,
			RoomMin:     [3]int{-2, -1, -2},
			RoomMax:     [3]int{1, 1, 1},
		},
		Assets: AssetsConfig{
			Root:          "assets",
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
