package utils

import (
	"regexp"
	"time"
)

const ToolUserAgent = "forgemods/1.0"
const DefaultBufferSize = 32 * 1024
const LogFile = ".forgemods.log"
const LockFile = ".forgemods.lock"
const PartSuffix = ".part"

const DefaultGameVersion = "1.20.1"
const DefaultDownloadDir = "downloaded_mods"
const DefaultWorkers = 5

const DefaultAPITimeout = 10 * time.Second
const DefaultStallTimeout = 20 * time.Second
const DefaultClientTimeout = 3 * time.Minute
const DefaultKATimeout = 90 * time.Second

// matches "1.19.2" as well as "mc1.20.1" inside file names
var GameVersionRegex = regexp.MustCompile(`(?:mc)?(\d+\.\d+(?:\.\d+)?)`)

var ManifestExtensions = []string{".json", ".yaml", ".yml", ".txt"}
