package api

import (
	"strconv"

	"sanma/common/http"
	"sanma/core/repository"
)

// HistoryListHandler 分页查询自己的历史战绩
func HistoryListHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}

	page, _ := strconv.Atoi(c.GetQueryWithDefault("page", "1"))
	size, _ := strconv.Atoi(c.GetQueryWithDefault("size", "20"))

	records, total, err := deps.Records.ListByUser(c.Request().Context(), userID, page, size)
	if err != nil {
		c.InternalServerError("查询历史战绩失败")
		return nil
	}
	c.SuccessWithPage(records, total, page, size)
	return nil
}

// HistoryDetailHandler 查询单局完整记录（含动作日志，可用于回放）
func HistoryDetailHandler(c *http.Context) error {
	if _, ok := currentUser(c); !ok {
		return nil
	}
	gameID := c.GetParam("gameId")
	if gameID == "" {
		c.BadRequest("gameId 不能为空")
		return nil
	}

	record, err := deps.Records.FindByGameID(c.Request().Context(), gameID)
	if err != nil {
		if err == repository.ErrNotFound {
			c.NotFound("对局不存在")
			return nil
		}
		c.InternalServerError("查询对局失败")
		return nil
	}
	c.Success(record)
	return nil
}
