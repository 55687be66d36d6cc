package settings

// SettingUpdate is the PUT /api/settings/{key} request body
type SettingUpdate struct {
	Value interface{} `json:"value"`
}

// Well-known setting keys. Settings in config.db take precedence over
// environment variables so they can be changed from the UI without a restart.
const (
	KeyBackupBucket    = "backup_s3_bucket"
	KeyBackupRegion    = "backup_s3_region"
	KeyBackupEndpoint  = "backup_s3_endpoint"
	KeyBackupAccessKey = "backup_s3_access_key"
	KeyBackupSecretKey = "backup_s3_secret_key"
	KeyBackupRetention = "backup_retention"

	KeyRescoreSchedule = "rescore_schedule"
	KeyQueuePageSize   = "queue_page_size"
)
