package config

// DefaultDatabasePath is the default path for the main application database
const DefaultDatabasePath = "./literattus.db"

// DefaultCoversCacheDir is where downloaded book cover images are cached
const DefaultCoversCacheDir = "./covers"
