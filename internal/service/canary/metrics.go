package canary

import (
	"context"
	"fmt"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"

	"canarytk/internal/service/common"
)

const (
	metricNamespace     = "CloudWatchSynthetics"
	metricsPeriodSec    = 300
	defaultMetricsRange = 24 * time.Hour
)

// metricSpec 取得するメトリクスの定義
type metricSpec struct {
	name      string
	statistic cwtypes.Statistic
	unit      string
}

var canaryMetricSpecs = []metricSpec{
	{name: "SuccessPercent", statistic: cwtypes.StatisticAverage, unit: "%"},
	{name: "Duration", statistic: cwtypes.StatisticAverage, unit: "ms"},
	{name: "Failed", statistic: cwtypes.StatisticSum, unit: "回"},
}

// metricSummary 取得結果の集計
type metricSummary struct {
	spec       metricSpec
	latest     *float64
	average    *float64
	dataPoints int
	err        error
}

// ShowCanaryMetrics 指定したCanaryのメトリクスを表示
func ShowCanaryMetrics(synClient *synthetics.Client, cwClient *cloudwatch.Client, name string, lookback time.Duration) error {
	// Canaryの存在確認
	if _, err := getCanary(synClient, name); err != nil {
		return err
	}

	if lookback == 0 {
		lookback = defaultMetricsRange
	}
	end := time.Now()
	start := end.Add(-lookback)

	fmt.Printf("%s %s のメトリクスを取得中... (過去%s)\n", common.SearchIcon, name, formatLookback(lookback))

	// メトリクスごとに並列で取得
	summaries := make([]metricSummary, len(canaryMetricSpecs))
	var mu sync.Mutex
	executor := common.NewParallelExecutor(len(canaryMetricSpecs))

	for i, spec := range canaryMetricSpecs {
		i, spec := i, spec
		executor.Execute(func() {
			summary := fetchMetricSummary(cwClient, name, spec, start, end)
			mu.Lock()
			summaries[i] = summary
			mu.Unlock()
		})
	}
	executor.Wait()

	for _, s := range summaries {
		if s.err != nil {
			return fmt.Errorf("%s メトリクス %s の取得に失敗: %w", common.ErrorIcon, s.spec.name, s.err)
		}
	}

	return common.DisplayList(
		summaries,
		fmt.Sprintf("%s のメトリクス", name),
		metricsToTableData,
		&common.DisplayOptions{},
	)
}

// fetchMetricSummary 単一メトリクスの統計値を取得して集計
func fetchMetricSummary(client *cloudwatch.Client, canaryName string, spec metricSpec, start, end time.Time) metricSummary {
	resp, err := client.GetMetricStatistics(context.Background(), &cloudwatch.GetMetricStatisticsInput{
		Namespace:  awssdk.String(metricNamespace),
		MetricName: awssdk.String(spec.name),
		Dimensions: []cwtypes.Dimension{
			{Name: awssdk.String("CanaryName"), Value: awssdk.String(canaryName)},
		},
		StartTime:  awssdk.Time(start),
		EndTime:    awssdk.Time(end),
		Period:     awssdk.Int32(metricsPeriodSec),
		Statistics: []cwtypes.Statistic{spec.statistic},
	})
	if err != nil {
		return metricSummary{spec: spec, err: err}
	}

	summary := metricSummary{spec: spec, dataPoints: len(resp.Datapoints)}
	if len(resp.Datapoints) == 0 {
		return summary
	}

	// 最新値と平均を算出
	var latestTime time.Time
	var total float64
	for _, dp := range resp.Datapoints {
		value := datapointValue(dp, spec.statistic)
		if value == nil {
			continue
		}
		total += *value
		if dp.Timestamp != nil && dp.Timestamp.After(latestTime) {
			latestTime = *dp.Timestamp
			summary.latest = value
		}
	}
	avg := total / float64(len(resp.Datapoints))
	summary.average = &avg
	return summary
}

// datapointValue 統計種別に応じた値を取り出す
func datapointValue(dp cwtypes.Datapoint, stat cwtypes.Statistic) *float64 {
	switch stat {
	case cwtypes.StatisticAverage:
		return dp.Average
	case cwtypes.StatisticSum:
		return dp.Sum
	case cwtypes.StatisticMaximum:
		return dp.Maximum
	case cwtypes.StatisticMinimum:
		return dp.Minimum
	default:
		return nil
	}
}

// metricsToTableData メトリクス集計をテーブルデータに変換
func metricsToTableData(summaries []metricSummary) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "メトリクス"},
		{Header: "最新値"},
		{Header: "平均"},
		{Header: "データ点数"},
	}

	data := make([][]string, len(summaries))
	for i, s := range summaries {
		data[i] = []string{
			s.spec.name,
			formatMetricValue(s.latest, s.spec.unit),
			formatMetricValue(s.average, s.spec.unit),
			fmt.Sprintf("%d", s.dataPoints),
		}
	}
	return columns, data
}

// formatMetricValue メトリクス値を単位付きでフォーマット
func formatMetricValue(value *float64, unit string) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", *value, unit)
}

// formatLookback 取得期間を表示用にフォーマット
func formatLookback(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d日間", int(d/(24*time.Hour)))
	}
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d時間", int(d/time.Hour))
	}
	return d.String()
}
