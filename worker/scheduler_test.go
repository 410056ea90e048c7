package worker

import (
	"fmt"
	"testing"

	"salespulse-wa/database"
	"salespulse-wa/logger"
	"salespulse-wa/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSchedulerTest(t *testing.T) (*ReportScheduler, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	st := store.New(db)
	return NewReportScheduler(st, nil, logger.New("error")), st
}

func TestCronSpecDefaults(t *testing.T) {
	scheduler, _ := newSchedulerTest(t)

	spec, err := scheduler.cronSpec(nil)
	require.NoError(t, err)
	assert.Equal(t, "CRON_TZ=America/Sao_Paulo 0 20 * * *", spec)
}

func TestCronSpecPerTenantSettings(t *testing.T) {
	scheduler, st := newSchedulerTest(t)

	company, err := st.CreateCompany("Acme")
	require.NoError(t, err)
	_, err = st.SaveSetting("report_time", "08:30", &company.ID)
	require.NoError(t, err)
	_, err = st.SaveSetting("report_timezone", "Europe/Lisbon", &company.ID)
	require.NoError(t, err)

	spec, err := scheduler.cronSpec(&company.ID)
	require.NoError(t, err)
	assert.Equal(t, "CRON_TZ=Europe/Lisbon 30 8 * * *", spec)
}

func TestCronSpecRejectsBadValues(t *testing.T) {
	scheduler, st := newSchedulerTest(t)

	for _, bad := range []string{"2030", "25:00", "12:75", "noon"} {
		_, err := st.SaveSetting("report_time", bad, nil)
		require.NoError(t, err)
		_, err = scheduler.cronSpec(nil)
		assert.Error(t, err, "report_time %q", bad)
	}

	_, err := st.SaveSetting("report_time", "20:00", nil)
	require.NoError(t, err)
	_, err = st.SaveSetting("report_timezone", "Mars/Olympus", nil)
	require.NoError(t, err)
	_, err = scheduler.cronSpec(nil)
	assert.Error(t, err)
}

func TestStartSchedulesOneJobPerCompany(t *testing.T) {
	scheduler, st := newSchedulerTest(t)

	_, err := st.CreateCompany("Acme")
	require.NoError(t, err)
	_, err = st.CreateCompany("Globex")
	require.NoError(t, err)

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Len(t, scheduler.cron.Entries(), 2)
}

func TestStartSkipsTenantWithBadSchedule(t *testing.T) {
	scheduler, st := newSchedulerTest(t)

	_, err := st.CreateCompany("Healthy")
	require.NoError(t, err)
	broken, err := st.CreateCompany("Broken")
	require.NoError(t, err)
	// Stored settings are runtime-writable, so a tenant can hold an invalid
	// schedule at boot. It loses its job, the other tenant keeps its own.
	_, err = st.SaveSetting("report_time", "noon", &broken.ID)
	require.NoError(t, err)

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Len(t, scheduler.cron.Entries(), 1)
}

func TestRunJobIsolatesPanics(t *testing.T) {
	// A nil reporter makes the job panic; the panic must stay inside runJob so
	// one broken tenant never takes down the scheduler or sibling jobs.
	scheduler, _ := newSchedulerTest(t)

	assert.NotPanics(t, func() {
		scheduler.runJob(nil, "global")
	})
}

func TestStartFallsBackToGlobalJob(t *testing.T) {
	scheduler, _ := newSchedulerTest(t)

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Len(t, scheduler.cron.Entries(), 1)
}
